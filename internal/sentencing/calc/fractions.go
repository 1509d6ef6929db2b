package calc

// FractionType identifies one of the three statutory fractions.
type FractionType string

const (
	FractionOneThird  FractionType = "1/3"
	FractionOneHalf   FractionType = "1/2"
	FractionTwoThirds FractionType = "2/3"
)

// FractionSpec couples a fraction type with its arithmetic and the legal
// benefit it unlocks.
type FractionSpec struct {
	Type        FractionType
	Numerator   int
	Denominator int
	Description string
}

// FractionSpecs lists the fractions of the Romanian penal system, in the
// order they occur. Every sentence gets all three; whether the 2/3 rule is
// the operative one for conditional release depends on the crime, which is a
// presentation concern.
var FractionSpecs = []FractionSpec{
	{Type: FractionOneThird, Numerator: 1, Denominator: 3, Description: "Liberare condiționată - infracțiuni normale"},
	{Type: FractionOneHalf, Numerator: 1, Denominator: 2, Description: "Schimbarea regimului de executare"},
	{Type: FractionTwoThirds, Numerator: 2, Denominator: 3, Description: "Liberare condiționată - infracțiuni grave"},
}
