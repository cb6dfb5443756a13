package repository

// Repositories agrupa los repositorios atados a una misma transacción.
type Repositories struct {
	Movements MovementRepository
	Closings  ClosingRepository
	Audit     AuditRepository
	Payments  PaymentRepository
	Sales     SaleRepository
	Products  ProductRepository
}
