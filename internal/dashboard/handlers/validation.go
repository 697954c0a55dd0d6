package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("cnpj", func(fl validator.FieldLevel) bool {
			return cnpjChecksumOK(fl.Field().String())
		})
	}
}

// cnpjChecksumOK verifies the 14 digit shape and both check digits of a CNPJ.
func cnpjChecksumOK(cnpj string) bool {
	if len(cnpj) != 14 {
		return false
	}
	var digits [14]int
	for i, r := range cnpj {
		if r < '0' || r > '9' {
			return false
		}
		digits[i] = int(r - '0')
	}
	// Repdigit sequences satisfy the checksum but are never issued.
	same := true
	for i := 1; i < 14; i++ {
		if digits[i] != digits[0] {
			same = false
			break
		}
	}
	if same {
		return false
	}
	return digits[12] == cnpjCheckDigit(digits[:12]) && digits[13] == cnpjCheckDigit(digits[:13])
}

func cnpjCheckDigit(digits []int) int {
	weight := len(digits) - 7
	sum := 0
	for _, d := range digits {
		sum += d * weight
		weight--
		if weight < 2 {
			weight = 9
		}
	}
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}
