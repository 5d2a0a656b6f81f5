package command

// Handlers groups the write-side use cases.
type Handlers struct {
	Reserve       *ReserveHandler
	Complete      *CompleteHandler
	Cancel        *CancelHandler
	CancelSession *CancelSessionHandler
	UpdateStock   *UpdateStockHandler
	SweepExpired  *SweepExpiredHandler
}
