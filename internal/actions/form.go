package actions

import (
	"net/url"

	"github.com/mitchellh/mapstructure"

	appValidator "github.com/charlesng35/teamkit/pkg/validator"
)

const invalidFormMessage = "Invalid form submission"

// decodeForm copies the first value of every form key into out using its
// `form` tags. Unknown keys are ignored.
func decodeForm(form url.Values, out any) error {
	raw := make(map[string]any, len(form))
	for key, values := range form {
		if len(values) > 0 {
			raw[key] = values[0]
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "form",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}

// bindForm decodes and validates form into dest. On failure it returns the
// validation result to hand back to the caller.
func bindForm[T any](form url.Values, dest *T) (Result, bool) {
	if err := decodeForm(form, dest); err != nil {
		return Fail(kindValidation, invalidFormMessage), false
	}
	if err := appValidator.ValidateStruct(dest); err != nil {
		return Fail(kindValidation, appValidator.FirstMessage(err)), false
	}
	return Result{}, true
}
