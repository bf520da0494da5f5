package model

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Price is an amount in cents.  It round-trips through DECIMAL(10,2) columns
// and renders as a two-decimal string ("12.50") in JSON, the way MySQL
// returns DECIMAL values.
type Price int64

// MaxPrice is the largest value a DECIMAL(10,2) column can hold.
const MaxPrice Price = 99999999_99

var ErrInvalidPrice = errors.New("invalid price")

// ParsePrice accepts a plain decimal such as "12", "12.5" or "12.50".
// Fractions beyond cents are rounded the way MySQL rounds on insert.
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.Wrapf(ErrInvalidPrice, "%q", s)
	}
	if f < 0 {
		return 0, errors.Wrapf(ErrInvalidPrice, "%q is negative", s)
	}
	p := Price(math.Round(f * 100))
	if p > MaxPrice {
		return 0, errors.Wrapf(ErrInvalidPrice, "%q is out of range", s)
	}
	return p, nil
}

func (p Price) String() string {
	sign := ""
	c := int64(p)
	if c < 0 {
		sign, c = "-", -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(p.String())), nil
}

func (p *Price) UnmarshalJSON(b []byte) error {
	v, err := ParsePrice(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Value stores the price as its decimal text so the driver never goes
// through a float.
func (p Price) Value() (driver.Value, error) {
	return p.String(), nil
}

func (p *Price) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return p.scanText(string(v))
	case string:
		return p.scanText(v)
	case int64:
		*p = Price(v * 100)
		return nil
	case float64:
		*p = Price(math.Round(v * 100))
		return nil
	case nil:
		*p = 0
		return nil
	}
	return errors.Errorf("cannot scan %T into Price", src)
}

func (p *Price) scanText(s string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return errors.Wrapf(ErrInvalidPrice, "scan %q", s)
	}
	*p = Price(math.Round(f * 100))
	return nil
}
