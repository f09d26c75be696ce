package refdata

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Stock states a catalog entry may carry. Only StockInStock earns a ranking
// bonus.
const (
	StockInStock  = "in_stock"
	StockLowStock = "low_stock"
	StockOnOrder  = "on_order"
)

// Product is one blower in the catalog. Airflow is stored canonically in
// m^3/min regardless of the unit the catalog file uses.
type Product struct {
	Model          string  `yaml:"model" json:"model"`
	AirflowMin     float64 `yaml:"airflow_min" json:"airflow_min"`
	AirflowMax     float64 `yaml:"airflow_max" json:"airflow_max"`
	PressureMinMbr float64 `yaml:"pressure_min" json:"pressure_min"`
	PressureMaxMbr float64 `yaml:"pressure_max" json:"pressure_max"`
	PowerKW        float64 `yaml:"power_kw" json:"power_kw"`
	Price          float64 `yaml:"price" json:"price"`
	StockState     string  `yaml:"stock_state" json:"stock_state"`
}

// InStock reports whether the product is immediately available.
func (p Product) InStock() bool {
	return p.StockState == StockInStock
}

// Snapshot is an immutable view of the catalog. Consumers must never mutate
// a snapshot after publishing it through a Store.
type Snapshot struct {
	Products []Product
	Version  string
}

// catalogFile is the on-disk shape of configs/catalog.yaml.
type catalogFile struct {
	Version string `yaml:"version"`
	// AirflowUnit is "m3_min" (default) or "m3_hr"; m3_hr values are
	// divided by 60 on load.
	AirflowUnit string    `yaml:"airflow_unit"`
	Products    []Product `yaml:"products"`
}

// LoadCatalog reads and normalizes a catalog file.
func LoadCatalog(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses catalog YAML, normalizes units, and validates every
// entry. A single bad product rejects the whole file so a partial catalog
// never goes live.
func ParseCatalog(data []byte) (*Snapshot, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	divisor := 1.0
	switch file.AirflowUnit {
	case "", "m3_min":
	case "m3_hr":
		divisor = 60.0
	default:
		return nil, fmt.Errorf("unknown airflow_unit %q", file.AirflowUnit)
	}

	products := make([]Product, 0, len(file.Products))
	for i, p := range file.Products {
		p.AirflowMin /= divisor
		p.AirflowMax /= divisor
		if p.StockState == "" {
			p.StockState = StockOnOrder
		}
		if err := validateProduct(p); err != nil {
			return nil, fmt.Errorf("catalog entry %d (%s): %w", i, p.Model, err)
		}
		products = append(products, p)
	}

	return &Snapshot{Products: products, Version: file.Version}, nil
}

func validateProduct(p Product) error {
	if p.Model == "" {
		return fmt.Errorf("model is required")
	}
	if p.AirflowMin < 0 || p.AirflowMax <= 0 {
		return fmt.Errorf("airflow range must be positive")
	}
	if p.AirflowMin > p.AirflowMax {
		return fmt.Errorf("airflow_min %g exceeds airflow_max %g", p.AirflowMin, p.AirflowMax)
	}
	if p.PressureMinMbr < 0 || p.PressureMaxMbr <= 0 {
		return fmt.Errorf("pressure range must be positive")
	}
	if p.PressureMinMbr > p.PressureMaxMbr {
		return fmt.Errorf("pressure_min %g exceeds pressure_max %g", p.PressureMinMbr, p.PressureMaxMbr)
	}
	if p.PowerKW < 0 {
		return fmt.Errorf("power_kw must not be negative")
	}
	if p.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	switch p.StockState {
	case StockInStock, StockLowStock, StockOnOrder:
	default:
		return fmt.Errorf("unknown stock_state %q", p.StockState)
	}
	return nil
}
