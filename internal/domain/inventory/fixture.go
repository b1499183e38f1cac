package inventory

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Fixture is a nested YAML description of a receiving hierarchy used to seed
// a store for local runs and demos.
type Fixture struct {
	Projects []ProjectFixture `yaml:"projects"`
}

type ProjectFixture struct {
	RITM       string         `yaml:"ritm"`
	Name       string         `yaml:"name"`
	Client     string         `yaml:"client"`
	Datacenter string         `yaml:"datacenter"`
	Status     string         `yaml:"status"`
	Orders     []OrderFixture `yaml:"orders"`
}

type OrderFixture struct {
	Code                   string                `yaml:"code"`
	Vendor                 string                `yaml:"vendor"`
	ExpectedEquipmentCount int                   `yaml:"expected_equipment_count"`
	Status                 string                `yaml:"status"`
	DeliveryNotes          []DeliveryNoteFixture `yaml:"delivery_notes"`
}

type DeliveryNoteFixture struct {
	DeliveryCode            string             `yaml:"delivery_code"`
	Carrier                 string             `yaml:"carrier"`
	TrackingNumber          string             `yaml:"tracking_number"`
	EstimatedEquipmentCount int                `yaml:"estimated_equipment_count"`
	Status                  string             `yaml:"status"`
	Equipment               []EquipmentFixture `yaml:"equipment"`
}

type EquipmentFixture struct {
	SerialNumber string `yaml:"serial_number"`
	AssetTag     string `yaml:"asset_tag"`
	Manufacturer string `yaml:"manufacturer"`
	Model        string `yaml:"model"`
	Category     string `yaml:"category"`
	Condition    string `yaml:"condition"`
	Status       string `yaml:"status"`
	Verified     bool   `yaml:"verified"`
}

func LoadFixture(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &f, nil
		}
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &f, nil
}

func LoadFixtureFile(path string) (*Fixture, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer file.Close()
	return LoadFixture(file)
}

// SeedCounts summarises what Apply created.
type SeedCounts struct {
	Projects      int `json:"projects"`
	Orders        int `json:"orders"`
	DeliveryNotes int `json:"delivery_notes"`
	Equipment     int `json:"equipment"`
}

// Apply creates the fixture through the service so every record passes the
// same validation as API input.
func (f *Fixture) Apply(ctx context.Context, svc *Service) (SeedCounts, error) {
	var counts SeedCounts
	for _, pf := range f.Projects {
		p, err := svc.CreateProject(ctx, CreateProjectRequest{
			RITM: pf.RITM, Name: pf.Name, Client: pf.Client, Datacenter: pf.Datacenter, Status: pf.Status,
		})
		if err != nil {
			return counts, fmt.Errorf("project %s: %w", pf.RITM, err)
		}
		counts.Projects++

		for _, of := range pf.Orders {
			o, err := svc.CreateOrder(ctx, p.ID, CreateOrderRequest{
				Code: of.Code, Vendor: of.Vendor, ExpectedEquipmentCount: of.ExpectedEquipmentCount, Status: of.Status,
			})
			if err != nil {
				return counts, fmt.Errorf("order %s: %w", of.Code, err)
			}
			counts.Orders++

			for _, nf := range of.DeliveryNotes {
				n, err := svc.CreateDeliveryNote(ctx, o.ID, CreateDeliveryNoteRequest{
					DeliveryCode: nf.DeliveryCode, Carrier: nf.Carrier, TrackingNumber: nf.TrackingNumber,
					EstimatedEquipmentCount: nf.EstimatedEquipmentCount, Status: nf.Status,
				})
				if err != nil {
					return counts, fmt.Errorf("delivery note %s: %w", nf.DeliveryCode, err)
				}
				counts.DeliveryNotes++

				for _, ef := range nf.Equipment {
					e, err := svc.CreateEquipment(ctx, n.ID, CreateEquipmentRequest{
						SerialNumber: ef.SerialNumber, AssetTag: ef.AssetTag, Manufacturer: ef.Manufacturer,
						Model: ef.Model, Category: ef.Category, Condition: ef.Condition, Status: ef.Status,
					})
					if err != nil {
						return counts, fmt.Errorf("equipment %s: %w", ef.SerialNumber, err)
					}
					if ef.Verified {
						if _, err := svc.store.UpdateEquipmentVerification(ctx, e.ID, true, nil); err != nil {
							return counts, fmt.Errorf("equipment %s: %w", ef.SerialNumber, err)
						}
					}
					counts.Equipment++
				}
			}
		}
	}
	return counts, nil
}
