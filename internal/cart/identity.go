package cart

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// digestBytes is the number of digest bytes kept in a line id (128 bits).
const digestBytes = 16

// LineID derives the identity of a configured product. Charm selections are
// compared as sets, so the order a shopper clicked them in never matters.
func LineID(productID string, cfg Configuration) string {
	canonical := CanonicalForm(productID, cfg)
	sum := blake2b.Sum256(canonical)
	return fmt.Sprintf("%s:%s:%s", cfg.ProductType(), productID, hex.EncodeToString(sum[:digestBytes]))
}

// CanonicalForm serializes the identity fields with sorted keys and sorted
// nested lists. encoding/json writes map keys in sorted order.
func CanonicalForm(productID string, cfg Configuration) []byte {
	fields := map[string]any{
		"productId":   productID,
		"productType": string(cfg.ProductType()),
	}
	if n, ok := normalize(cfg); ok {
		cfg = n
	}

	switch c := cfg.(type) {
	case HoodieConfig:
		fields["colorId"] = c.ColorID
		fields["sizeId"] = c.SizeID
	case SweatpantsConfig:
		fields["colorId"] = c.ColorID
		fields["sizeId"] = c.SizeID
	case BraceletConfig:
		fields["charmIds"] = sortedSet(c.CharmIDs)
	case MatchingSetConfig:
		bracelets := make([]map[string]any, 0, len(c.Bracelets))
		for _, b := range c.Bracelets {
			bracelets = append(bracelets, map[string]any{
				"braceletId": b.BraceletID,
				"charmIds":   sortedSet(b.CharmIDs),
			})
		}
		sort.Slice(bracelets, func(i, j int) bool {
			bi, bj := bracelets[i]["braceletId"].(string), bracelets[j]["braceletId"].(string)
			if bi != bj {
				return bi < bj
			}
			return strings.Join(bracelets[i]["charmIds"].([]string), ",") < strings.Join(bracelets[j]["charmIds"].([]string), ",")
		})
		fields["bracelets"] = bracelets
	default:
		fields["configuration"] = fmt.Sprintf("%T%+v", cfg, cfg)
	}

	// Marshalling maps of strings and string slices cannot fail.
	out, _ := json.Marshal(fields)
	return out
}

func sortedSet(ids []string) []string {
	out := distinct(ids)
	sort.Strings(out)
	return out
}
