package validators

type WalletAmountRequest struct {
	Amount int64 `json:"amount" validate:"required,money_amount"`
}

func ValidateWalletAmount(req *WalletAmountRequest) ValidationErrors {
	return ValidateStruct(req)
}
