package switchboard

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/aptos-labs/aptos-go-sdk"
	"github.com/aptos-labs/aptos-go-sdk/bcs"
	"github.com/shopspring/decimal"
)

const (
	// MaxJobs is the maximum number of jobs a feed can be created with.
	MaxJobs = 8
	// MaxDecimalScale is the maximum number of fractional digits of the
	// program decimals. Values with more digits are rounded.
	MaxDecimalScale = 9
)

var (
	// ErrNoJobs is returned when feed parameters contain no jobs.
	ErrNoJobs = errors.New("no jobs")
	// ErrTooManyJobs is returned when feed parameters contain more than
	// MaxJobs jobs.
	ErrTooManyJobs = fmt.Errorf("too many jobs (max %d)", MaxJobs)
	// ErrBadCoinType is returned for coin types that are not struct tags.
	ErrBadCoinType = errors.New("bad coin type")
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// JobInit is a job to create along with the feed.
type JobInit struct {
	Name     string
	Metadata string
	// Data is base64-encoded length-delimited OracleJob.
	Data   string
	Weight uint8
}

// FeedParams is a set of feed (aggregator) parameters. Only the number of jobs,
// the coin type and the variance threshold are checked locally, everything else
// is up to the program.
type FeedParams struct {
	// Authority is allowed to reconfigure the feed, sender is used if not set.
	Authority aptos.AccountAddress
	Queue     aptos.AccountAddress
	Crank     aptos.AccountAddress

	Name     string
	Metadata string

	BatchSize             uint64
	MinOracleResults      uint64
	MinJobResults         uint64
	MinUpdateDelaySeconds uint64
	StartAfter            uint64
	VarianceThreshold     decimal.Decimal
	ForceReportPeriod     uint64
	Expiration            uint64
	DisableCrank          bool
	HistorySize           uint64
	ReadCharge            uint64
	// RewardEscrow receives read charges, Authority is used if not set.
	RewardEscrow          aptos.AccountAddress
	ReadWhitelist         []aptos.AccountAddress
	LimitReadsToWhitelist bool
	// InitialLoadAmount is the amount of coins transferred to the feed lease.
	InitialLoadAmount uint64
	CoinType          string
	// Seed of the resource account of the feed, random one is used if nil.
	Seed *aptos.AccountAddress
	Jobs []JobInit
}

func (p *FeedParams) check() error {
	if len(p.Jobs) == 0 {
		return ErrNoJobs
	}
	if len(p.Jobs) > MaxJobs {
		return ErrTooManyJobs
	}
	return nil
}

// args returns BCS-encoded create_feed_action arguments.
func (p *FeedParams) args(sender, seed aptos.AccountAddress) ([][]byte, error) {
	variance, scale, err := DecimalParts(p.VarianceThreshold)
	if err != nil {
		return nil, fmt.Errorf("variance threshold: %w", err)
	}
	var zero aptos.AccountAddress
	authority := p.Authority
	if authority == zero {
		authority = sender
	}
	escrow := p.RewardEscrow
	if escrow == zero {
		escrow = authority
	}
	var (
		b         argsBuilder
		names     = make([]string, 0, len(p.Jobs))
		metadatas = make([]string, 0, len(p.Jobs))
		datas     = make([]string, 0, len(p.Jobs))
		weights   = make([]byte, 0, len(p.Jobs))
	)
	for _, j := range p.Jobs {
		names = append(names, j.Name)
		metadatas = append(metadatas, j.Metadata)
		datas = append(datas, j.Data)
		weights = append(weights, j.Weight)
	}
	b.address(authority)
	b.str(p.Name)
	b.str(p.Metadata)
	b.address(p.Queue)
	b.u64(p.BatchSize)
	b.u64(p.MinOracleResults)
	b.u64(p.MinJobResults)
	b.u64(p.MinUpdateDelaySeconds)
	b.u64(p.StartAfter)
	b.u64(variance)
	b.u8(scale)
	b.u64(p.ForceReportPeriod)
	b.u64(p.Expiration)
	b.boolean(p.DisableCrank)
	b.u64(p.HistorySize)
	b.u64(p.ReadCharge)
	b.address(escrow)
	b.addresses(p.ReadWhitelist)
	b.boolean(p.LimitReadsToWhitelist)
	b.u64(p.InitialLoadAmount)
	b.strings(names)
	b.strings(metadatas)
	b.strings(datas)
	b.bytes(weights)
	b.address(seed)
	b.address(p.Crank)
	return b.args, b.err
}

// DecimalParts converts a non-negative decimal into the unsigned mantissa and
// scale pair the program uses. Values with more than MaxDecimalScale
// fractional digits are rounded.
func DecimalParts(d decimal.Decimal) (uint64, uint8, error) {
	if d.Sign() < 0 {
		return 0, 0, errors.New("negative value")
	}
	if -d.Exponent() > MaxDecimalScale {
		d = d.Round(MaxDecimalScale)
	}
	var (
		mant = d.Coefficient()
		exp  = d.Exponent()
	)
	if exp > 0 {
		mant.Mul(mant, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil))
		exp = 0
	}
	if !mant.IsUint64() {
		return 0, 0, fmt.Errorf("%s doesn't fit into u64", d)
	}
	return mant.Uint64(), uint8(-exp), nil
}

// ParseStructTag parses a fully qualified struct type (like
// "0x1::aptos_coin::AptosCoin") into a type tag. Generic structs are not
// supported.
func ParseStructTag(s string) (aptos.TypeTag, error) {
	parts := strings.Split(s, "::")
	if len(parts) != 3 {
		return aptos.TypeTag{}, fmt.Errorf("%w: %q is not <address>::<module>::<name>", ErrBadCoinType, s)
	}
	var addr aptos.AccountAddress
	if err := addr.ParseStringRelaxed(parts[0]); err != nil {
		return aptos.TypeTag{}, fmt.Errorf("%w: %q: %w", ErrBadCoinType, s, err)
	}
	for _, ident := range parts[1:] {
		if !identRe.MatchString(ident) {
			return aptos.TypeTag{}, fmt.Errorf("%w: bad identifier %q", ErrBadCoinType, ident)
		}
	}
	return aptos.TypeTag{Value: &aptos.StructTag{
		Address: addr,
		Module:  parts[1],
		Name:    parts[2],
	}}, nil
}

// argsBuilder collects BCS-encoded entry function arguments, the first
// serialization error stops it.
type argsBuilder struct {
	args [][]byte
	err  error
}

func (b *argsBuilder) add(f func(ser *bcs.Serializer)) {
	if b.err != nil {
		return
	}
	ser := &bcs.Serializer{}
	f(ser)
	if err := ser.Error(); err != nil {
		b.err = err
		return
	}
	b.args = append(b.args, ser.ToBytes())
}

func (b *argsBuilder) address(a aptos.AccountAddress) {
	b.add(func(ser *bcs.Serializer) { ser.FixedBytes(a[:]) })
}

func (b *argsBuilder) addresses(as []aptos.AccountAddress) {
	b.add(func(ser *bcs.Serializer) {
		ser.Uleb128(uint32(len(as)))
		for i := range as {
			ser.FixedBytes(as[i][:])
		}
	})
}

func (b *argsBuilder) str(s string) {
	b.add(func(ser *bcs.Serializer) { ser.WriteString(s) })
}

func (b *argsBuilder) strings(ss []string) {
	b.add(func(ser *bcs.Serializer) {
		ser.Uleb128(uint32(len(ss)))
		for _, s := range ss {
			ser.WriteString(s)
		}
	})
}

func (b *argsBuilder) bytes(v []byte) {
	b.add(func(ser *bcs.Serializer) { ser.WriteBytes(v) })
}

func (b *argsBuilder) u64(v uint64) {
	b.add(func(ser *bcs.Serializer) { ser.U64(v) })
}

func (b *argsBuilder) u8(v uint8) {
	b.add(func(ser *bcs.Serializer) { ser.U8(v) })
}

func (b *argsBuilder) boolean(v bool) {
	b.add(func(ser *bcs.Serializer) { ser.Bool(v) })
}
