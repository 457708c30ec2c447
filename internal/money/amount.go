// Package money provides the Amount type used for every monetary field in
// the document model: bet/win amounts, balances, and derived net totals.
package money

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/apd"
)

// ctx is shared across all Amount arithmetic. 34-digit precision comfortably
// exceeds anything a gaming ledger needs and matches apd's own decimal128
// default, so rounding never enters the balance computation in I4.
var ctx = apd.BaseContext.WithPrecision(34)

// Amount is an exact decimal value. It wraps apd.Decimal rather than float64
// so that repeated signed-sum accumulation (I4) never drifts, and encodes to
// JSON as both a numeric and a fixed-two-decimal string form (§6), since
// downstream compliance tooling is specified to prefer the string form when
// the two disagree.
type Amount struct {
	d apd.Decimal
}

// Zero is the additive identity.
var Zero = Amount{}

// New builds an Amount from a float64. Only used at the edges (test
// fixtures, the round-session generator) where a machine-generated value
// has no pre-existing decimal representation to preserve.
func New(f float64) Amount {
	var a Amount
	if _, err := a.d.SetFloat64(f); err != nil {
		panic(fmt.Sprintf("money: float64 value %v is not representable: %v", f, err))
	}
	return a
}

// Parse builds an Amount from its canonical fixed-two-decimal string form.
func Parse(s string) (Amount, error) {
	var a Amount
	var _, _, err = ctx.SetString(&a.d, s)
	if err != nil {
		return Amount{}, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return a, nil
}

// String renders the fixed-two-decimal compliance form.
func (a Amount) String() string {
	var rounded apd.Decimal
	_, _ = ctx.Quantize(&rounded, &a.d, -2)
	return rounded.Text('f')
}

// Float64 returns the nearest float64, for latency-sample math and report
// formatting where exactness no longer matters.
func (a Amount) Float64() float64 {
	f, _ := a.d.Float64()
	return f
}

// IsNegative reports whether the amount is strictly less than zero.
func (a Amount) IsNegative() bool {
	return a.d.Negative && !a.d.IsZero()
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	var out Amount
	_, _ = ctx.Add(&out.d, &a.d, &b.d)
	return out
}

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount {
	var out Amount
	_, _ = ctx.Sub(&out.d, &a.d, &b.d)
	return out
}

// Cmp returns -1, 0, or 1 as a is less than, equal to, or greater than b.
func (a Amount) Cmp(b Amount) int {
	return a.d.Cmp(&b.d)
}

// Signed returns the amount with its sign adjusted per the accounting rule
// in I4: WIN/REFUND/BONUS/JACKPOT credit the balance (positive), BET/FEE/RAKE
// debit it (negative). CASHOUT is a withdrawal and debits like BET.
func Signed(txnType string, amt Amount) Amount {
	switch txnType {
	case "WIN", "REFUND", "BONUS", "JACKPOT":
		return amt
	default: // BET, FEE, RAKE, CASHOUT
		return Zero.Sub(amt)
	}
}

type wireForm struct {
	Value  float64 `json:"value"`
	String string  `json:"string"`
}

// MarshalJSON emits the dual numeric/string form required by §6.
func (a Amount) MarshalJSON() ([]byte, error) {
	var f, _ = a.d.Float64()
	return json.Marshal(wireForm{Value: f, String: a.String()})
}

// UnmarshalJSON accepts three shapes: a bare JSON number (legacy / test
// fixtures), a bare JSON string (the compliance form alone), or the dual
// {"value":...,"string":...} object. When both are present and disagree,
// the string form wins, per §6.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || string(data) == "null":
		*a = Zero
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding amount string: %w", err)
		}
		parsed, err := Parse(s)
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	case data[0] == '{':
		var w wireForm
		if err := json.Unmarshal(data, &w); err != nil {
			return fmt.Errorf("decoding amount object: %w", err)
		}
		if w.String != "" {
			parsed, err := Parse(w.String)
			if err != nil {
				return err
			}
			*a = parsed
			return nil
		}
		*a = New(w.Value)
		return nil
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("decoding amount number: %w", err)
		}
		*a = New(f)
		return nil
	}
}
