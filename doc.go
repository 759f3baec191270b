// Package wordcalc implements a calculator for arithmetic written partly or
// entirely in English words.
//
// Operands are digit strings or spelled numbers up to the hundreds of
// thousands: "Two Hundred Fifty", "nineteen hundred", "one thousand twelve".
// Operators are symbols or words: "+" or "plus", "-" or "minus", "*" or
// "times", "/" or "divide", "**" or "exp". Words are matched without regard
// to case.
//
// Exponentiation is left-associative and binds looser than negation, so
// "2 ** 3 ** 2" is 64 and "-2 ** 2" is 4. Division is real division, so
// "seven divide two" is 3.5.
//
// A line is either an expression or an assignment "name = expression"
// ("name equals expression"). Parse turns a line into a Statement, and a
// Context executes it.
package wordcalc
