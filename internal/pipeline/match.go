package pipeline

import (
	"sort"
	"strings"

	"github.com/nithinv16/dukaaon-admin-console-sub005/internal"
	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/catalog"
	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/config"
	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/receipt"
	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/util"
)

// Matcher flags receipt line items that look like products already in the
// marketplace catalog, so imports do not create duplicate listings.
type Matcher struct {
	cfg   config.Config
	index *catalog.Index
}

func NewMatcher(cfg config.Config, products []internal.ProductRecord) *Matcher {
	return &Matcher{cfg: cfg, index: catalog.BuildIndex(products)}
}

func (m *Matcher) Check(item receipt.LineItem) internal.DuplicateResult {
	normalized := util.NormalizeText(item.Name)

	if barcode := findBarcodeToken(item.RawCells); barcode != "" {
		byCode := m.index.ByCode[util.NormalizeCode(barcode)]
		if len(byCode) == 1 {
			return internal.DuplicateResult{
				Status:     internal.DuplicateFound,
				Confidence: 0.99,
				Reason:     internal.ReasonBarcode,
				Product:    toDuplicateProduct(byCode[0]),
				Candidates: []internal.DuplicateCandidate{{ID: byCode[0].ID, RemoteUID: byCode[0].RemoteUID, Name: byCode[0].Name, Score: 0.99}},
			}
		}
		if len(byCode) > 1 {
			return internal.DuplicateResult{
				Status:     internal.DuplicateReview,
				Confidence: 0.80,
				Reason:     internal.ReasonBarcode,
				Product:    nil,
				Candidates: toCandidates(byCode, 0.80),
			}
		}
	}

	exact := m.index.ByName[normalized]
	if len(exact) == 1 {
		return internal.DuplicateResult{
			Status:     internal.DuplicateFound,
			Confidence: 0.95,
			Reason:     internal.ReasonName,
			Product:    toDuplicateProduct(exact[0]),
			Candidates: []internal.DuplicateCandidate{{ID: exact[0].ID, RemoteUID: exact[0].RemoteUID, Name: exact[0].Name, Score: 0.95}},
		}
	}
	if len(exact) > 1 {
		return internal.DuplicateResult{
			Status:     internal.DuplicateReview,
			Confidence: 0.78,
			Reason:     internal.ReasonName,
			Product:    nil,
			Candidates: toCandidates(exact, 0.78),
		}
	}

	candidates := m.rankCandidates(normalized)
	if len(candidates) == 0 {
		return internal.DuplicateResult{Status: internal.DuplicateNone, Confidence: 0, Reason: internal.ReasonNone, Product: nil, Candidates: []internal.DuplicateCandidate{}}
	}

	top1 := candidates[0]
	gap := top1.Score
	if len(candidates) > 1 {
		gap = top1.Score - candidates[1].Score
	}

	best := m.index.ProductsByID[top1.ID]
	if top1.Score >= m.cfg.DuplicateOKThreshold && gap >= m.cfg.DuplicateGapThreshold {
		return internal.DuplicateResult{Status: internal.DuplicateFound, Confidence: top1.Score, Reason: internal.ReasonFuzzy, Product: toDuplicateProduct(best), Candidates: candidates}
	}
	if top1.Score >= m.cfg.DuplicateReviewThreshold {
		return internal.DuplicateResult{Status: internal.DuplicateReview, Confidence: top1.Score, Reason: internal.ReasonFuzzy, Product: toDuplicateProduct(best), Candidates: candidates}
	}
	return internal.DuplicateResult{Status: internal.DuplicateNone, Confidence: top1.Score, Reason: internal.ReasonNone, Product: nil, Candidates: candidates}
}

func (m *Matcher) rankCandidates(query string) []internal.DuplicateCandidate {
	queryTokens := util.Tokenize(query)
	ids := map[int]struct{}{}

	for _, token := range queryTokens {
		for id := range m.index.TokenToProductIDs[token] {
			ids[id] = struct{}{}
		}
	}

	if len(ids) == 0 {
		i := 0
		for id := range m.index.ProductsByID {
			ids[id] = struct{}{}
			i++
			if i >= 1500 {
				break
			}
		}
	}

	out := make([]internal.DuplicateCandidate, 0, len(ids))
	for id := range ids {
		product := m.index.ProductsByID[id]
		candidateName := m.index.NormalizedNameByID[id]
		score := scoreName(query, candidateName, queryTokens, util.Tokenize(candidateName))
		out = append(out, internal.DuplicateCandidate{ID: product.ID, RemoteUID: product.RemoteUID, Name: product.Name, Score: score})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}

// scoreName blends character-level bigram similarity with word overlap, so
// "PARLE G 100G" still lands near "Parle-G Biscuit 100 g".
func scoreName(query, candidate string, queryTokens, candidateTokens []string) float64 {
	dice := util.DiceCoefficient(query, candidate)
	if len(queryTokens) == 0 || len(candidateTokens) == 0 {
		return dice
	}

	set := map[string]struct{}{}
	for _, t := range candidateTokens {
		set[t] = struct{}{}
	}
	overlap := 0
	for _, t := range queryTokens {
		if _, ok := set[t]; ok {
			overlap++
		}
	}
	tokenScore := float64(overlap) / float64(len(queryTokens))
	return 0.65*dice + 0.35*tokenScore
}

func findBarcodeToken(cells []string) string {
	for _, cell := range cells {
		for _, token := range strings.Fields(cell) {
			if util.LooksLikeBarcode(token) {
				return token
			}
		}
	}
	return ""
}

func toDuplicateProduct(p internal.ProductRecord) *internal.DuplicateProduct {
	id := p.ID
	name := p.Name
	return &internal.DuplicateProduct{
		ID:        &id,
		RemoteUID: p.RemoteUID,
		Name:      &name,
		Brand:     p.Brand,
		Barcode:   p.Barcode,
		MRP:       p.MRP,
	}
}

func toCandidates(products []internal.ProductRecord, score float64) []internal.DuplicateCandidate {
	limit := len(products)
	if limit > 5 {
		limit = 5
	}
	out := make([]internal.DuplicateCandidate, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, internal.DuplicateCandidate{ID: products[i].ID, RemoteUID: products[i].RemoteUID, Name: products[i].Name, Score: score})
	}
	return out
}
