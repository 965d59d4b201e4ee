package credit

// Flat response envelopes consumed by the legacy frontend.

type BalanceResponse struct {
	Success        bool `json:"success"`
	Balance        int  `json:"balance"`
	TotalPurchased int  `json:"totalPurchased"`
	TotalUsed      int  `json:"totalUsed"`
}

type TransactionsResponse struct {
	Success      bool          `json:"success"`
	Transactions []Transaction `json:"transactions"`
}

type CreateTransactionRequest struct {
	UserID      string `json:"userId" validate:"required"`
	Type        string `json:"type" validate:"required,txtype"`
	Amount      int    `json:"amount" validate:"required,gte=1"`
	Description string `json:"description"`
}

type CreateTransactionResponse struct {
	Success     bool         `json:"success"`
	Transaction *Transaction `json:"transaction"`
}

type PaginationMeta struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}

type AdminTransactionsResponse struct {
	Success      bool               `json:"success"`
	Transactions []AdminTransaction `json:"transactions"`
	Stats        *Stats             `json:"stats"`
	Pagination   PaginationMeta     `json:"pagination"`
}

type AnalyticsResponse struct {
	Success   bool       `json:"success"`
	Analytics *Analytics `json:"analytics"`
}

type RecomputeResponse struct {
	Success bool             `json:"success"`
	Result  *RecomputeResult `json:"result"`
}
