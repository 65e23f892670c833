package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Fixture URIs used by NewFixtureOpener.
const (
	DemographicsURI = "mem://demographics.csv"
	EconomicURI     = "mem://economic.csv"
	SpendingURI     = "mem://governmentspending.csv"
)

// DemographicsCSV covers two countries over two years. TST is absent on
// purpose: it only appears in the economic and spending sources.
var DemographicsCSV = strings.Join([]string{
	"iso3,name,region,time,lifeExpectancy,childMortality",
	"AAA,Aland,Europe,2000,80,4",
	"AAA,Aland,Europe,2001,81,3.5",
	"BBB,Bland,Asia,2000,60,40",
	"BBB,Bland,Asia,2001,62,",
	",Broken,Asia,2001,1,1",
}, "\n") + "\n"

// EconomicCSV is long-format, one indicator observation per row.
var EconomicCSV = strings.Join([]string{
	"Indicator,LOCATION,Country,Time,Value",
	"GDP_PC,AAA,Aland,2000,30000",
	"co2_PC,AAA,Aland,2000,7",
	"GDP_PC,AAA,Aland,2001,31000",
	"GDP_PC,BBB,Bland,2000,5000",
	"co2_PC,BBB,Bland,2000,2",
	"GDP_PC,TST,Testland,2000,100",
	"co2_PC,TST,Testland,2000,2",
	"GDP_PC,TST,Testland,notayear,1",
}, "\n") + "\n"

// SpendingCSV is wide by year, including out-of-range year columns.
var SpendingCSV = strings.Join([]string{
	"Country Name,Country Code,1999,2000,2001,2020",
	"Aland,AAA,1,8.5,8.7,9",
	"Bland,BBB,1,3.1,,9",
	"Testland,TST,1,5.0,7.0,9",
}, "\n") + "\n"

// NewFixtureOpener returns a MockOpener serving the three fixture sources
// under DemographicsURI, EconomicURI and SpendingURI.
func NewFixtureOpener() *MockOpener {
	return &MockOpener{Files: map[string]string{
		DemographicsURI: DemographicsCSV,
		EconomicURI:     EconomicCSV,
		SpendingURI:     SpendingCSV,
	}}
}

// WriteFixtureFiles writes the three fixture sources into dir with their
// standard file names and returns their paths.
func WriteFixtureFiles(t *testing.T, dir string) (demographics, economic, spending string) {
	t.Helper()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatalf("write fixture %s: %v", name, err)
		}
		return p
	}
	return write("demographics.csv", DemographicsCSV),
		write("economic.csv", EconomicCSV),
		write("governmentspending.csv", SpendingCSV)
}
