package wordcalc

type word struct {
	kind TokenKind
	val  int64
}

// vocabulary maps case-folded words to their token classes. Operator words
// take the same kinds as the equivalent symbols.
var vocabulary = map[string]word{
	"plus":   {TokenPlus, 0},
	"minus":  {TokenMinus, 0},
	"exp":    {TokenExp, 0},
	"times":  {TokenTimes, 0},
	"divide": {TokenDivide, 0},
	"equals": {TokenEquals, 0},

	"ten":       {TokenTeen, 10},
	"eleven":    {TokenTeen, 11},
	"twelve":    {TokenTeen, 12},
	"thirteen":  {TokenTeen, 13},
	"fourteen":  {TokenTeen, 14},
	"fifteen":   {TokenTeen, 15},
	"sixteen":   {TokenTeen, 16},
	"seventeen": {TokenTeen, 17},
	"eighteen":  {TokenTeen, 18},
	"nineteen":  {TokenTeen, 19},

	"twenty":  {TokenTens, 20},
	"thirty":  {TokenTens, 30},
	"forty":   {TokenTens, 40},
	"fifty":   {TokenTens, 50},
	"sixty":   {TokenTens, 60},
	"seventy": {TokenTens, 70},
	"eighty":  {TokenTens, 80},
	"ninety":  {TokenTens, 90},

	"one":   {TokenOnes, 1},
	"two":   {TokenOnes, 2},
	"three": {TokenOnes, 3},
	"four":  {TokenOnes, 4},
	"five":  {TokenOnes, 5},
	"six":   {TokenOnes, 6},
	"seven": {TokenOnes, 7},
	"eight": {TokenOnes, 8},
	"nine":  {TokenOnes, 9},

	"hundred":  {TokenHundred, 100},
	"thousand": {TokenThousand, 1000},
}
