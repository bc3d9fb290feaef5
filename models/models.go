package models

// All returns every model in migration order
func All() []interface{} {
	return []interface{}{
		&Customer{},
		&Admin{},
		&Badge{},
		&Product{},
		&Service{},
		&Booking{},
		&Order{},
		&OrderItem{},
		&OrderNote{},
		&Lead{},
		&AuditLog{},
	}
}
