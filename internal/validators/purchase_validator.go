package validators

type PurchasePickRequest struct {
	PickID          string `json:"pick_id" validate:"required,object_id"`
	PaymentMethodID string `json:"payment_method_id" validate:"required"`
	Platform        string `json:"platform" validate:"omitempty,oneof=ios android web"`
}

type PurchaseSubscriptionRequest struct {
	HandicapperID   string `json:"handicapper_id" validate:"required,max=128"`
	ProductID       string `json:"product_id" validate:"required,max=128"`
	PaymentMethodID string `json:"payment_method_id" validate:"required"`
	AutoRenew       bool   `json:"auto_renew"`
	Platform        string `json:"platform" validate:"omitempty,oneof=ios android web"`
}

type RestoreReceipt struct {
	ProviderTransactionID string `json:"transaction_id" validate:"required,max=255"`
	ProductID             string `json:"product_id" validate:"required,max=128"`
	ProductType           string `json:"product_type" validate:"required,oneof=subscription pick premium_pack"`
	HandicapperID         string `json:"handicapper_id" validate:"required,max=128"`
	PickID                string `json:"pick_id" validate:"omitempty,object_id"`
	Receipt               string `json:"receipt" validate:"max=65536"`
	Platform              string `json:"platform" validate:"omitempty,oneof=ios android web"`
}

type RestorePurchasesRequest struct {
	Receipts []RestoreReceipt `json:"receipts" validate:"required,min=1,max=100,dive"`
}

type RefundRequest struct {
	Reason string `json:"reason" validate:"omitempty,oneof=duplicate fraudulent requested_by_customer"`
}

func ValidatePurchasePick(req *PurchasePickRequest) error {
	return ValidateStruct(req).Err()
}

func ValidatePurchaseSubscription(req *PurchaseSubscriptionRequest) error {
	return ValidateStruct(req).Err()
}

func ValidateRestorePurchases(req *RestorePurchasesRequest) error {
	errs := ValidateStruct(req)

	for i, r := range req.Receipts {
		if r.ProductType == "pick" && r.PickID == "" {
			errs.Add("receipts["+itoa(i)+"].pick_id", "Pick receipts need a pick_id")
		}
	}

	return errs.Err()
}

func ValidateRefund(req *RefundRequest) error {
	return ValidateStruct(req).Err()
}
