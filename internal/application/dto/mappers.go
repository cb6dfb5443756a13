package dto

import "github.com/jhoicas/Clinica-api/internal/domain/entity"

// FromMovement convierte la entidad a su respuesta HTTP.
func FromMovement(m *entity.Movement) MovementResponse {
	return MovementResponse{
		ID:        m.ID,
		Ledger:    m.Ledger,
		Key:       m.Key,
		Kind:      m.Kind,
		Category:  m.Category,
		Amount:    m.Amount,
		Reference: m.Reference,
		CreatedAt: m.CreatedAt,
		CreatedBy: m.CreatedBy,
	}
}

func FromAggregate(a entity.Aggregate) AggregateResponse {
	return AggregateResponse{
		Ledger:           a.Ledger,
		Key:              a.Key,
		AsOf:             a.AsOf,
		TotalsByCategory: a.TotalsByCategory,
		GrandTotal:       a.GrandTotal,
		MovementCount:    a.MovementCount,
	}
}

func FromClosing(c *entity.Closing) ClosingResponse {
	return ClosingResponse{
		ID:                    c.ID,
		Number:                c.Number,
		Series:                c.Series,
		PeriodKey:             c.PeriodKey,
		ComputedTotal:         c.ComputedTotal,
		CountedTotal:          c.CountedTotal,
		Variance:              c.Variance,
		Breakdown:             c.Breakdown,
		MovementCount:         c.MovementCount,
		VarianceJustification: c.VarianceJustification,
		State:                 c.State,
		ClosedBy:              c.ClosedBy,
		ClosedAt:              c.ClosedAt,
		ReopenedBy:            c.ReopenedBy,
		ReopenedAt:            c.ReopenedAt,
		ReopenJustification:   c.ReopenJustification,
		SupersedesID:          c.SupersedesID,
	}
}

func FromAuditEvent(e *entity.AuditEvent) AuditEventResponse {
	return AuditEventResponse{
		ID:            e.ID,
		ActorID:       e.ActorID,
		ActorRole:     e.ActorRole,
		Action:        e.Action,
		TargetID:      e.TargetID,
		Series:        e.Series,
		PeriodKey:     e.PeriodKey,
		Justification: e.Justification,
		Details:       e.Details,
		CreatedAt:     e.CreatedAt,
	}
}

func FromPayment(p *entity.Payment) PaymentResponse {
	return PaymentResponse{
		ID:         p.ID,
		PeriodKey:  p.PeriodKey,
		PatientID:  p.PatientID,
		Concept:    p.Concept,
		Amount:     p.Amount,
		Method:     p.Method,
		Status:     p.Status,
		VoidReason: p.VoidReason,
		VoidedBy:   p.VoidedBy,
		VoidedAt:   p.VoidedAt,
		CreatedBy:  p.CreatedBy,
		CreatedAt:  p.CreatedAt,
	}
}

func FromProduct(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Size:        p.Size,
		Compression: p.Compression,
		Price:       p.Price,
		CreatedAt:   p.CreatedAt,
	}
}

func FromSale(s *entity.Sale) SaleResponse {
	return SaleResponse{
		ID:        s.ID,
		PeriodKey: s.PeriodKey,
		ProductID: s.ProductID,
		Quantity:  s.Quantity,
		UnitPrice: s.UnitPrice,
		Total:     s.Total,
		Method:    s.Method,
		CreatedBy: s.CreatedBy,
		CreatedAt: s.CreatedAt,
	}
}
