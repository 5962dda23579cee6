package catalog

import (
	"github.com/nithinv16/dukaaon-admin-console-sub005/internal"
	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/util"
)

type Index struct {
	ProductsByID       map[int]internal.ProductRecord
	ByCode             map[string][]internal.ProductRecord
	ByName             map[string][]internal.ProductRecord
	TokenToProductIDs  map[string]map[int]struct{}
	NormalizedNameByID map[int]string
}

func BuildIndex(products []internal.ProductRecord) *Index {
	idx := &Index{
		ProductsByID:       map[int]internal.ProductRecord{},
		ByCode:             map[string][]internal.ProductRecord{},
		ByName:             map[string][]internal.ProductRecord{},
		TokenToProductIDs:  map[string]map[int]struct{}{},
		NormalizedNameByID: map[int]string{},
	}

	for _, p := range products {
		idx.ProductsByID[p.ID] = p
		normName := util.NormalizeText(p.Name)
		idx.NormalizedNameByID[p.ID] = normName
		idx.ByName[normName] = append(idx.ByName[normName], p)

		addCode := func(code *string) {
			if code == nil {
				return
			}
			norm := util.NormalizeCode(*code)
			if norm == "" {
				return
			}
			idx.ByCode[norm] = append(idx.ByCode[norm], p)
		}

		addCode(p.Barcode)
		addCode(p.SKU)
		addCode(p.RemoteUID)

		for _, token := range util.Tokenize(p.Name) {
			if _, ok := idx.TokenToProductIDs[token]; !ok {
				idx.TokenToProductIDs[token] = map[int]struct{}{}
			}
			idx.TokenToProductIDs[token][p.ID] = struct{}{}
		}
	}

	return idx
}
