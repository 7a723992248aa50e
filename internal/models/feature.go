package models

// FeatureRecord is the fixed eleven-field household profile both models
// are trained on. Bounds match the ranges offered by the input form.
type FeatureRecord struct {
	Fans           int `json:"fans" validate:"min=0,max=10"`
	Lights         int `json:"lights" validate:"min=0,max=30"`
	Fridge         int `json:"fridge" validate:"min=0,max=3"`
	TV             int `json:"tv" validate:"min=0,max=3"`
	AC             int `json:"ac" validate:"min=0,max=3"`
	WaterHeater    int `json:"water_heater" validate:"min=0,max=2"`
	WashingMachine int `json:"washing_machine" validate:"min=0,max=2"`
	Microwave      int `json:"microwave" validate:"min=0,max=2"`
	FamilyMembers  int `json:"num_family_members" validate:"min=1,max=15"`
	HouseSize      int `json:"house_size" validate:"min=200,max=6000"`
	Rooms          int `json:"num_rooms" validate:"min=1,max=12"`
}

// Features returns the record as named numeric features, keyed by the
// column names the model artifacts were trained with.
func (r FeatureRecord) Features() map[string]float64 {
	return map[string]float64{
		"fans":               float64(r.Fans),
		"lights":             float64(r.Lights),
		"fridge":             float64(r.Fridge),
		"tv":                 float64(r.TV),
		"ac":                 float64(r.AC),
		"water_heater":       float64(r.WaterHeater),
		"washing_machine":    float64(r.WashingMachine),
		"microwave":          float64(r.Microwave),
		"num_family_members": float64(r.FamilyMembers),
		"house_size":         float64(r.HouseSize),
		"num_rooms":          float64(r.Rooms),
	}
}
