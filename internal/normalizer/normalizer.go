package normalizer

import (
	"fmt"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/donor-resolver/app/models"
)

var reSpaces = regexp.MustCompile(`\s+`)

// NormalizedKey holds the cleaned and derived fields one record contributes
// to the stage joins. Keys are ephemeral: recomputed every run, never
// persisted, so a change to the cleaning rules takes effect immediately.
//
// Postal code is deliberately absent. Donation postal codes are truncated
// or corrupted at the source, so they are kept for audit display only and
// never enter the key space.
type NormalizedKey struct {
	FirstClean   string
	MiddleClean  string
	LastClean    string
	FirstInitial string
	FirstSoundex string
	LastSoundex  string
	CityClean    string
	State        string
}

// Valid reports whether the record can participate in candidate generation.
// A record missing a usable first or last name flows straight to the
// unmatched output.
func (k *NormalizedKey) Valid() bool {
	return k.FirstClean != "" && k.LastClean != ""
}

// Normalizer derives NormalizedKeys from raw donation and identity records.
// City cleaning is memoized behind an LRU cache: a county-sized batch
// repeats the same few hundred city strings hundreds of thousands of times.
type Normalizer struct {
	cityCache *lru.Cache[string, string]
	logger    *zap.Logger
}

// New creates a Normalizer. cacheSize bounds the city memoization cache.
func New(cacheSize int, logger *zap.Logger) (*Normalizer, error) {
	cache, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create city cache: %w", err)
	}
	return &Normalizer{cityCache: cache, logger: logger}, nil
}

// NormalizeDonation derives the key for a donation record.
func (n *Normalizer) NormalizeDonation(d *models.DonationRecord) NormalizedKey {
	return n.normalize(d.FirstName, d.MiddleName, d.LastName, d.City, d.State)
}

// NormalizeIdentity derives the key for an identity record.
func (n *Normalizer) NormalizeIdentity(id *models.IdentityRecord) NormalizedKey {
	return n.normalize(id.FirstName, id.MiddleName, id.LastName, id.City, id.State)
}

func (n *Normalizer) normalize(first, middle, last, city, state string) NormalizedKey {
	k := NormalizedKey{
		FirstClean:  CleanName(first),
		MiddleClean: CleanName(middle),
		LastClean:   CleanName(last),
		CityClean:   n.cleanCity(city),
		State:       strings.ToUpper(strings.TrimSpace(state)),
	}
	if k.FirstClean != "" {
		k.FirstInitial = k.FirstClean[:1]
		k.FirstSoundex = Soundex(k.FirstClean)
	}
	if k.LastClean != "" {
		k.LastSoundex = Soundex(k.LastClean)
	}
	return k
}

// CleanName uppercases, folds to ASCII, drops everything that is not a
// letter, and collapses runs of whitespace. Apostrophes vanish
// ("O'BRIEN" -> "OBRIEN") while hyphens keep the word break
// ("SMITH-JONES" -> "SMITH JONES").
func CleanName(s string) string {
	s = strings.ToUpper(FoldToASCII(s))
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c)
		case c == ' ' || c == '\t' || c == '-':
			b.WriteByte(' ')
		}
	}
	return strings.TrimSpace(reSpaces.ReplaceAllString(b.String(), " "))
}

func (n *Normalizer) cleanCity(city string) string {
	if cached, ok := n.cityCache.Get(city); ok {
		return cached
	}
	cleaned := CleanName(city)
	n.cityCache.Add(city, cleaned)
	return cleaned
}
