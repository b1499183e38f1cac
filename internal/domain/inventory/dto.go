package inventory

type CreateProjectRequest struct {
	RITM       string `json:"ritm" validate:"required,ritm"`
	Name       string `json:"name" validate:"notblank,max=255"`
	Client     string `json:"client" validate:"max=255"`
	Datacenter string `json:"datacenter" validate:"max=128"`
	Status     string `json:"status" validate:"omitempty,oneof=active on_hold completed cancelled"`
}

type CreateOrderRequest struct {
	Code                   string `json:"code" validate:"notblank,max=64"`
	Vendor                 string `json:"vendor" validate:"max=255"`
	ExpectedEquipmentCount int    `json:"expected_equipment_count" validate:"gte=0"`
	Status                 string `json:"status" validate:"omitempty,oneof=pending_receive pending received partial completed cancelled"`
}

type CreateDeliveryNoteRequest struct {
	DeliveryCode            string `json:"delivery_code" validate:"notblank,max=64"`
	Carrier                 string `json:"carrier" validate:"max=128"`
	TrackingNumber          string `json:"tracking_number" validate:"max=128"`
	EstimatedEquipmentCount int    `json:"estimated_equipment_count" validate:"gte=0"`
	Status                  string `json:"status" validate:"omitempty,oneof=received processing completed"`
}

type CreateEquipmentRequest struct {
	SerialNumber string `json:"serial_number" validate:"notblank,max=128"`
	AssetTag     string `json:"asset_tag" validate:"max=64"`
	Manufacturer string `json:"manufacturer" validate:"max=128"`
	Model        string `json:"model" validate:"max=128"`
	Category     string `json:"category" validate:"max=64"`
	Condition    string `json:"condition" validate:"omitempty,oneof=new good fair poor"`
	Status       string `json:"status" validate:"omitempty,oneof=received installed configured decommissioned"`
}
