package http

import (
	"net/url"

	"marketplace/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

func bindPath(c echo.Context, name string, dest any) error {
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		return errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return nil
}

func bindQuery(params url.Values, name string, required bool, dest any) error {
	if err := runtime.BindQueryParameter("form", true, required, name, params, dest); err != nil {
		if required && !params.Has(name) {
			return errs.NewValueIsRequiredError(name)
		}
		return errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return nil
}
