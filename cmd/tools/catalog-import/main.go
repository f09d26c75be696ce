// cmd/tools/catalog-import/main.go
//
// Maintenance tool for the product catalog: validate a catalog file,
// normalize it to canonical m^3/min units, or add a single product.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"blower-selector/internal/refdata"
)

// catalogDocument mirrors the on-disk catalog shape. Written files are always
// in canonical m^3/min units.
type catalogDocument struct {
	Version     string            `yaml:"version"`
	AirflowUnit string            `yaml:"airflow_unit"`
	Products    []refdata.Product `yaml:"products"`
}

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	normalizeCmd := flag.NewFlagSet("normalize", flag.ExitOnError)
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)

	// Validate command flags
	validatePath := validateCmd.String("path", "configs/catalog.yaml", "Path to catalog file")

	// Normalize command flags
	normalizeIn := normalizeCmd.String("in", "", "Catalog file to normalize (any supported airflow unit)")
	normalizeOut := normalizeCmd.String("out", "", "Output path for the normalized catalog")
	normalizeVersion := normalizeCmd.String("version", "", "Version to stamp on the output (default: keep input version)")

	// Add command flags
	addPath := addCmd.String("path", "configs/catalog.yaml", "Path to catalog file")
	model := addCmd.String("model", "", "Product model (e.g., GHBH-5D5-36-2R)")
	airflowMin := addCmd.Float64("airflowMin", 0, "Minimum airflow in m^3/min")
	airflowMax := addCmd.Float64("airflowMax", 0, "Maximum airflow in m^3/min")
	pressureMin := addCmd.Float64("pressureMin", 0, "Minimum pressure in mbar")
	pressureMax := addCmd.Float64("pressureMax", 0, "Maximum pressure in mbar")
	powerKW := addCmd.Float64("powerKW", 0, "Rated power in kW")
	price := addCmd.Float64("price", 0, "Unit price")
	stockState := addCmd.String("stock", "on_order", "Stock state (in_stock, low_stock, on_order)")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		snap, err := refdata.LoadCatalog(*validatePath)
		if err != nil {
			fmt.Printf("Catalog validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Catalog validation passed. Found %d products.\n", len(snap.Products))

	case "normalize":
		normalizeCmd.Parse(os.Args[2:])
		if *normalizeIn == "" || *normalizeOut == "" {
			fmt.Println("Error: in and out are required for normalize.")
			normalizeCmd.Usage()
			os.Exit(1)
		}
		err := normalizeCatalog(*normalizeIn, *normalizeOut, *normalizeVersion)
		if err != nil {
			fmt.Printf("Error normalizing catalog: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote normalized catalog: %s\n", *normalizeOut)

	case "add":
		addCmd.Parse(os.Args[2:])
		if *model == "" || *airflowMax <= 0 || *pressureMax <= 0 {
			fmt.Println("Error: model, airflowMax, and pressureMax are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		product := refdata.Product{
			Model:          *model,
			AirflowMin:     *airflowMin,
			AirflowMax:     *airflowMax,
			PressureMinMbr: *pressureMin,
			PressureMaxMbr: *pressureMax,
			PowerKW:        *powerKW,
			Price:          *price,
			StockState:     *stockState,
		}
		err := addProduct(*addPath, product)
		if err != nil {
			fmt.Printf("Error adding product: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added product: %s\n", *model)

	case "help":
		fallthrough
	default:
		help()
	}
}

// normalizeCatalog loads a catalog in any supported unit and writes it back
// in canonical m^3/min units.
func normalizeCatalog(in, out, version string) error {
	snap, err := refdata.LoadCatalog(in)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	if version == "" {
		version = snap.Version
	}

	doc := catalogDocument{
		Version:     version,
		AirflowUnit: "m3_min",
		Products:    snap.Products,
	}
	return saveCatalog(&doc, out)
}

func addProduct(path string, product refdata.Product) error {
	data, err := os.ReadFile(path)
	var doc catalogDocument
	if err != nil {
		// A missing file starts a new catalog.
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read catalog: %w", err)
		}
		doc = catalogDocument{Version: "1", AirflowUnit: "m3_min"}
	} else {
		if uerr := yaml.Unmarshal(data, &doc); uerr != nil {
			return fmt.Errorf("failed to parse catalog: %w", uerr)
		}
		if doc.AirflowUnit != "" && doc.AirflowUnit != "m3_min" {
			return fmt.Errorf("catalog uses unit %q; run normalize first", doc.AirflowUnit)
		}
		doc.AirflowUnit = "m3_min"
	}

	for _, existing := range doc.Products {
		if existing.Model == product.Model {
			return fmt.Errorf("product with model %s already exists", product.Model)
		}
	}

	doc.Products = append(doc.Products, product)
	if err := saveCatalog(&doc, path); err != nil {
		return err
	}

	// Re-validate through the same path the service uses.
	if _, err := refdata.LoadCatalog(path); err != nil {
		return fmt.Errorf("catalog invalid after add: %w", err)
	}
	return nil
}

// saveCatalog handles writing the catalog to file.
func saveCatalog(doc *catalogDocument, path string) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return nil
}

func help() {
	fmt.Println(`
Usage: catalog-import <command> [flags]

Commands:
  validate   Validate a catalog file
  normalize  Convert a catalog to canonical m^3/min units
  add        Add a product to a catalog
  help       Show this help message

Examples:
  catalog-import validate -path configs/catalog.yaml
  catalog-import normalize -in vendor-catalog.yaml -out configs/catalog.yaml -version 2
  catalog-import add -model GHBH-5D5-36-2R -airflowMin 2.1 -airflowMax 6.3 -pressureMin 100 -pressureMax 310 -powerKW 5.5 -price 48500 -stock in_stock

Use 'catalog-import <command> -h' for more information about a command.`)
}
