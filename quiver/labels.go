// SPDX-License-Identifier: MIT

package quiver

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// variableLabel names the k-th free arrow: a..z, then a1..z1, a2...
func variableLabel(k int) string {
	letter := rune('a' + k%26)
	if k < 26 {
		return string(letter)
	}
	return fmt.Sprintf("%c%d", letter, k/26)
}

// constantLabel prints z compactly: "2", "i", "-3i", "1+2i", "1-i".
func constantLabel(z complex128) string {
	re, im := real(z), imag(z)
	switch {
	case im == 0:
		return formatReal(re)
	case re == 0:
		return formatImag(im)
	case im < 0:
		return formatReal(re) + "-" + formatImag(-im)
	default:
		return formatReal(re) + "+" + formatImag(im)
	}
}

func formatReal(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}

func formatImag(im float64) string {
	switch im {
	case 1:
		return "i"
	case -1:
		return "-i"
	}
	return formatReal(im) + "i"
}

// derivedLabel renders sums as "a+b" / "2a" and products as "ab" / "a^2".
func derivedLabel(kind Kind, same bool, left, right string) string {
	l, r := parenthesize(left), parenthesize(right)
	switch {
	case kind == Sum && same:
		return "2" + l
	case kind == Sum:
		return l + "+" + r
	case same:
		return l + "^2"
	default:
		return l + r
	}
}

func parenthesize(name string) string {
	if utf8.RuneCountInString(name) == 1 {
		return name
	}
	return "(" + name + ")"
}
