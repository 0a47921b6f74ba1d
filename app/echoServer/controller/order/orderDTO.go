package order

type CreateOrderReq struct {
	ItemID        int64  `json:"item_id" form:"item_id" validate:"required,gt=0"`
	CustomerName  string `json:"customer_name" form:"customer_name" validate:"required"`
	CustomerPhone string `json:"customer_phone" form:"customer_phone" validate:"required"`
	RentDate      string `json:"rent_date" form:"rent_date" validate:"required,datetime=2006-01-02"`
	ReturnDate    string `json:"return_date" form:"return_date" validate:"required,datetime=2006-01-02"`
	PaymentMethod string `json:"payment_method" form:"payment_method" validate:"required,oneof=cash transfer"`
	PickupTime    string `json:"pickup_time,omitempty" form:"pickup_time" validate:"omitempty,datetime=2006-01-02T15:04"`
}

type FeedbackReq struct {
	Rating  int      `json:"rating" validate:"required,min=1,max=5"`
	Message string   `json:"message" validate:"max=2000"`
	Images  []string `json:"images" validate:"omitempty,dive,url"`
}
