package db

import "gorm.io/gorm"

type Repositories struct {
	Profiles   *ProfileRepository
	EnergyLogs *EnergyLogRepository
	Deliveries *DeliveryRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Profiles:   NewProfileRepository(database),
		EnergyLogs: NewEnergyLogRepository(database),
		Deliveries: NewDeliveryRepository(database),
	}
}
