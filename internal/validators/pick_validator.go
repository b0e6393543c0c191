package validators

type PickCreateRequest struct {
	Content    string   `json:"content" validate:"max=2000"`
	Game       string   `json:"game" validate:"required,trimmed_min=1,max=200"`
	Selection  string   `json:"pick" validate:"required,trimmed_min=1,max=200"`
	Sport      string   `json:"sport" validate:"required,trimmed_min=1,max=50"`
	Odds       string   `json:"odds" validate:"max=20"`
	Confidence int      `json:"confidence" validate:"omitempty,min=1,max=100"`
	IsPaid     bool     `json:"is_paid"`
	IsFree     bool     `json:"is_free"`
	Price      float64  `json:"price" validate:"gte=0,lte=1000"`
	Tags       []string `json:"tags" validate:"max=10,dive,trimmed_min=1,max=30"`
	Analysis   string   `json:"analysis" validate:"max=5000"`
	Reasoning  string   `json:"reasoning" validate:"max=5000"`
}

func ValidatePickCreate(req *PickCreateRequest) error {
	errs := ValidateStruct(req)

	if req.IsPaid && req.IsFree {
		errs.Add("is_free", "A pick cannot be both paid and free")
	}
	if req.IsPaid && req.Price <= 0 {
		errs.Add("price", "Paid picks need a price")
	}

	return errs.Err()
}

type PickStatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=pending won lost push void"`
}

func ValidatePickStatusUpdate(req *PickStatusUpdateRequest) error {
	return ValidateStruct(req).Err()
}
