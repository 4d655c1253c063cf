package payments

import (
	"strings"
	"sync/atomic"
	"time"

	hashids "github.com/speps/go-hashids/v2"
)

// ReferenceGenerator mints short, non-guessable transaction references for
// gateway sessions, e.g. "SS-9WKQ3ZD1". A fresh reference per attempt keeps
// gateways from rejecting retried charges as duplicates.
type ReferenceGenerator struct {
	h   *hashids.HashID
	seq atomic.Int64
}

func NewReferenceGenerator(salt string) (*ReferenceGenerator, error) {
	hd := hashids.NewData()
	hd.Salt = salt
	hd.MinLength = 8
	h, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, err
	}
	return &ReferenceGenerator{h: h}, nil
}

func (g *ReferenceGenerator) Next() string {
	n := g.seq.Add(1)
	code, err := g.h.Encode([]int{int(time.Now().Unix() & 0x7FFFFFFF), int(n)})
	if err != nil {
		// Encode only fails on negative inputs, which the masking rules out.
		code = time.Now().Format("20060102150405")
	}
	return "SS-" + strings.ToUpper(code)
}
