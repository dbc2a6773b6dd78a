package balance

type BalanceResponse struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Year   int    `json:"year"`
	Earned int    `json:"earned"`
	Casual int    `json:"casual"`
	Sick   int    `json:"sick"`
}

func mapToResponse(b LeaveBalance) BalanceResponse {
	return BalanceResponse{
		ID:     b.ID.String(),
		UserID: b.UserID.String(),
		Year:   b.Year,
		Earned: b.Earned,
		Casual: b.Casual,
		Sick:   b.Sick,
	}
}
