package queries

import (
	"errors"
	"fmt"
	"math"

	"marketplace/internal/core/domain/model/party"
	"marketplace/internal/pkg/errs"
)

// MaxSearchLimit bounds how many hits a proximity search returns.
const MaxSearchLimit = 100

func checkSearch(role party.Role, radiusKm float64, limit int) error {
	var problems []error
	if !role.IsAssignable() {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("role",
			fmt.Errorf("%s is not filled by acceptance", role)))
	}
	if math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) || radiusKm < 0 {
		problems = append(problems, errs.NewValueIsOutOfRangeError("radiusKm", radiusKm, 0, "finite"))
	}
	if limit < 0 || limit > MaxSearchLimit {
		problems = append(problems, errs.NewValueIsOutOfRangeError("limit", limit, 0, MaxSearchLimit))
	}
	return errors.Join(problems...)
}

func pageSize(limit int) int {
	if limit == 0 {
		return DefaultPageSize
	}
	return limit
}
