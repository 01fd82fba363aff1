package models

// All lists every table in migration order (reference data first)
func All() []interface{} {
	return []interface{}{
		&LocRow{},
		&LocBin{},
		&LocTier{},
		&Location{},
		&ProductCategory{},
		&Product{},
		&BoxType{},
		&Box{},
		&Activity{},
		&Pallet{},
		&PalletBox{},
	}
}
