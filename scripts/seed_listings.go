// seed_listings.go is a standalone script that seeds sample listings and
// tenant preferences via the Matchmaker API.
//
// Usage:
//
//	go run scripts/seed_listings.go -api http://localhost:8700
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
)

type listing struct {
	Title     string   `json:"title"`
	Rent      float64  `json:"rent"`
	Address   string   `json:"address"`
	City      string   `json:"city"`
	Bedrooms  int      `json:"bedrooms"`
	Bathrooms int      `json:"bathrooms"`
	SizeSqm   *float64 `json:"size_sqm,omitempty"`
	Amenities []string `json:"amenities"`
	Status    string   `json:"status"`
}

type preference struct {
	TenantName        string   `json:"tenant_name"`
	BudgetMin         float64  `json:"budget_min"`
	BudgetMax         float64  `json:"budget_max"`
	PreferredLocation string   `json:"preferred_location,omitempty"`
	RequiredAmenities []string `json:"required_amenities,omitempty"`
	MinBedrooms       int      `json:"min_bedrooms"`
	MinBathrooms      int      `json:"min_bathrooms"`
}

func fptr(v float64) *float64 { return &v }

var listings = []listing{
	{Title: "2-bed flat off Awolowo Road", Rent: 90000, Address: "14 Awolowo Road", City: "Lagos", Bedrooms: 2, Bathrooms: 1, SizeSqm: fptr(95), Amenities: []string{"parking", "security"}, Status: "available"},
	{Title: "Garden maisonette, Ikeja", Rent: 120000, Address: "3 Allen Avenue", City: "Lagos", Bedrooms: 3, Bathrooms: 2, SizeSqm: fptr(140), Amenities: []string{"parking", "garden", "borehole"}, Status: "available"},
	{Title: "Studio near the waterfront", Rent: 60000, Address: "22 Marina Street", City: "Lagos", Bedrooms: 1, Bathrooms: 1, Amenities: []string{"security"}, Status: "available"},
	{Title: "Family duplex, GRA", Rent: 250000, Address: "7 Golf Course Road", City: "Port Harcourt", Bedrooms: 4, Bathrooms: 3, SizeSqm: fptr(210), Amenities: []string{"parking", "security", "generator"}, Status: "available"},
	{Title: "Serviced 2-bed, Wuse", Rent: 180000, Address: "11 Aminu Kano Crescent", City: "Abuja", Bedrooms: 2, Bathrooms: 2, SizeSqm: fptr(110), Amenities: []string{"parking", "gym", "pool"}, Status: "available"},
}

var preferences = []preference{
	{TenantName: "Adaeze N.", BudgetMin: 50000, BudgetMax: 150000, PreferredLocation: "Lagos", RequiredAmenities: []string{"parking"}, MinBedrooms: 2, MinBathrooms: 1},
	{TenantName: "Tunde O.", BudgetMin: 100000, BudgetMax: 300000, PreferredLocation: "Abuja", MinBedrooms: 2, MinBathrooms: 2},
	{TenantName: "Chika E.", BudgetMin: 40000, BudgetMax: 80000, MinBedrooms: 1, MinBathrooms: 1},
}

func main() {
	apiURL := flag.String("api", "http://localhost:8700", "Matchmaker API base URL")
	dryRun := flag.Bool("dry-run", false, "print payloads without posting")
	flag.Parse()

	for _, l := range listings {
		post(*apiURL+"/api/v1/listings", l, *dryRun)
	}
	for _, p := range preferences {
		post(*apiURL+"/api/v1/preferences", p, *dryRun)
	}
}

func post(url string, v interface{}, dryRun bool) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Fatalf("marshal: %v", err)
	}
	if dryRun {
		fmt.Printf("POST %s\n%s\n", url, payload)
		return
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		log.Fatalf("post %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		log.Fatalf("post %s: status %s", url, resp.Status)
	}
	fmt.Printf("seeded via %s (%s)\n", url, resp.Status)
}
