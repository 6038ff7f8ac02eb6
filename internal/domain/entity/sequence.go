package entity

// Nombres de secuencias atómicas (tabla sequences).
const (
	SequenceSale      = "sale"
	SequenceReceipt   = "receipt"
	SequenceStockUnit = "stock_unit"
	SequencePO        = "purchase_order"
)
