// Seeds synthetic donation and identity snapshots into MongoDB so the
// matcher can be exercised without production data.
//
// Usage:
//
//	go run scripts/seed_fixtures/main.go -identities 5000 -donations 2000 -seed 42
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/donor-resolver/app/models"
	"github.com/donor-resolver/helpers/utils"
)

var firstNames = []string{
	"JAMES", "MARY", "ROBERT", "PATRICIA", "JOHN", "JENNIFER", "MICHAEL",
	"LINDA", "WILLIAM", "ELIZABETH", "DAVID", "BARBARA", "RICHARD", "SUSAN",
	"JOSEPH", "JESSICA", "THOMAS", "MARGARET", "CHARLES", "KAREN", "GREGORY",
	"NANCY", "STEPHEN", "KATHERINE", "EDWARD", "DEBORAH",
}

// Nickname variants injected into donation rows so the nickname stage fires.
var nicknameOf = map[string]string{
	"JAMES":     "JIM",
	"ROBERT":    "BOB",
	"WILLIAM":   "BILL",
	"MICHAEL":   "MIKE",
	"GREGORY":   "GREG",
	"ELIZABETH": "LIZ",
	"MARGARET":  "PEGGY",
	"STEPHEN":   "STEVE",
	"KATHERINE": "KATE",
	"DEBORAH":   "DEBBIE",
}

var lastNames = []string{
	"SMITH", "JOHNSON", "WILLIAMS", "BROWN", "JONES", "GARCIA", "MILLER",
	"DAVIS", "RODRIGUEZ", "MARTINEZ", "LEITNER", "ASHCRAFT", "PFISTER",
	"HONEYMAN", "TYMCZAK", "O'BRIEN", "SMITH-JONES", "MULLER",
}

var cities = map[string][]string{
	"NJ": {"MADISON", "CHATHAM", "SUMMIT", "MORRISTOWN", "PRINCETON"},
	"NY": {"ALBANY", "BUFFALO", "ITHACA", "SYRACUSE"},
	"PA": {"PITTSBURGH", "ALLENTOWN", "ERIE", "SCRANTON"},
	"CT": {"HARTFORD", "STAMFORD", "NORWALK"},
}

var committees = []string{
	"FRIENDS OF THE RIVER PAC", "CITIZENS FOR BETTER ROADS",
	"GOOD GOVERNMENT FUND", "COMMITTEE TO RE-ELECT",
}

func main() {
	var (
		nIdentities = flag.Int("identities", 5000, "identity records to generate")
		nDonations  = flag.Int("donations", 2000, "donation records to generate")
		seed        = flag.Int64("seed", 1, "PRNG seed, fixed for reproducible fixtures")
		drop        = flag.Bool("drop", true, "drop existing snapshot collections first")
	)
	flag.Parse()

	loadConfig()
	rng := rand.New(rand.NewSource(*seed))

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(viper.GetString("mongo.url")))
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	defer client.Disconnect(context.Background())
	db := client.Database(viper.GetString("mongo.database"))

	if *drop {
		for _, name := range []string{"donations", "identities"} {
			if err := db.Collection(name).Drop(ctx); err != nil {
				log.Fatalf("drop %s: %v", name, err)
			}
		}
	}

	identities := generateIdentities(rng, *nIdentities)
	donations := generateDonations(rng, identities, *nDonations)

	if err := insertIdentities(ctx, db, identities); err != nil {
		log.Fatalf("seed identities: %v", err)
	}
	if err := insertDonations(ctx, db, donations); err != nil {
		log.Fatalf("seed donations: %v", err)
	}

	fmt.Printf("seeded %d identities and %d donations into %s\n",
		len(identities), len(donations), viper.GetString("mongo.database"))
}

func generateIdentities(rng *rand.Rand, n int) []models.IdentityRecord {
	states := make([]string, 0, len(cities))
	for s := range cities {
		states = append(states, s)
	}
	// Map iteration order is random; sort so a fixed seed yields fixed output.
	sort.Strings(states)

	out := make([]models.IdentityRecord, 0, n)
	for i := 0; i < n; i++ {
		state := states[rng.Intn(len(states))]
		cityList := cities[state]
		middle := ""
		if rng.Intn(3) == 0 {
			middle = firstNames[rng.Intn(len(firstNames))]
		}
		out = append(out, models.IdentityRecord{
			IdentityID: fmt.Sprintf("voter-%06d", i+1),
			FirstName:  firstNames[rng.Intn(len(firstNames))],
			MiddleName: middle,
			LastName:   lastNames[rng.Intn(len(lastNames))],
			AddressID:  "addr-" + utils.GenerateShortID(),
			City:       cityList[rng.Intn(len(cityList))],
			State:      state,
			PostalCode: fmt.Sprintf("%05d", 7000+rng.Intn(2000)),
			County:     "MORRIS",
		})
	}
	return out
}

func generateDonations(rng *rand.Rand, identities []models.IdentityRecord, n int) []models.DonationRecord {
	out := make([]models.DonationRecord, 0, n)
	for i := 0; i < n; i++ {
		d := models.DonationRecord{
			DonationID:    fmt.Sprintf("don-%06d", i+1),
			CommitteeName: committees[rng.Intn(len(committees))],
			Employer:      "SELF-EMPLOYED",
			Occupation:    "CONSULTANT",
			Amount:        float64(25+rng.Intn(200)) * 10,
			ElectionType:  "GENERAL",
			ElectionYear:  2022 + 2*rng.Intn(2),
		}

		// Roughly 70% of donations point at a real identity; the rest are
		// noise rows that should land in the unmatched bucket.
		if len(identities) > 0 && rng.Intn(10) < 7 {
			id := identities[rng.Intn(len(identities))]
			d.FirstName = id.FirstName
			d.MiddleName = id.MiddleName
			d.LastName = id.LastName
			d.City = id.City
			d.State = id.State
			d.PostalCode = id.PostalCode
			if nick, ok := nicknameOf[id.FirstName]; ok && rng.Intn(4) == 0 {
				d.FirstName = nick
			}
			if rng.Intn(5) == 0 {
				d.FirstName = d.FirstName[:1]
			}
		} else {
			d.FirstName = firstNames[rng.Intn(len(firstNames))]
			d.LastName = "Q" + lastNames[rng.Intn(len(lastNames))]
			d.City = "NOWHERE"
			d.State = "ZZ"
		}
		d.FullName = strings.TrimSpace(d.FirstName + " " + d.MiddleName + " " + d.LastName)
		out = append(out, d)
	}
	return out
}

func insertIdentities(ctx context.Context, db *mongo.Database, rows []models.IdentityRecord) error {
	docs := make([]interface{}, len(rows))
	for i := range rows {
		docs[i] = rows[i]
	}
	if _, err := db.Collection("identities").InsertMany(ctx, docs); err != nil {
		return err
	}
	_, err := db.Collection("identities").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "identity_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func insertDonations(ctx context.Context, db *mongo.Database, rows []models.DonationRecord) error {
	docs := make([]interface{}, len(rows))
	for i := range rows {
		docs[i] = rows[i]
	}
	if _, err := db.Collection("donations").InsertMany(ctx, docs); err != nil {
		return err
	}
	_, err := db.Collection("donations").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "donation_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func loadConfig() {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetDefault("mongo.url", "mongodb://localhost:27017")
	viper.SetDefault("mongo.database", "donor_resolver")

	viper.SetEnvPrefix("RESOLVER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("no config file found, using defaults: %v", err)
	}
}
