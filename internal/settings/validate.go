package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var sectionTypes = map[Module]reflect.Type{
	ModuleGeneral:       reflect.TypeOf(General{}),
	ModuleSecurity:      reflect.TypeOf(Security{}),
	ModulePayments:      reflect.TypeOf(Payments{}),
	ModuleStore:         reflect.TypeOf(Store{}),
	ModuleLeagues:       reflect.TypeOf(Leagues{}),
	ModuleBroadcast:     reflect.TypeOf(Broadcast{}),
	ModuleNotifications: reflect.TypeOf(Notifications{}),
	ModuleLGPD:          reflect.TypeOf(LGPD{}),
	ModuleIntegrations:  reflect.TypeOf(Integrations{}),
}

// Validator checks a Patch against the typed shape of each module. Enum
// and range rules come from the `validate` tags on the module structs.
type Validator struct {
	validate *validator.Validate
}

func NewValidator(validate *validator.Validate) *Validator {
	if validate == nil {
		validate = validator.New()
	}
	return &Validator{validate: validate}
}

// Validate returns every offending dotted field path. An empty result means
// the patch can be applied.
func (v *Validator) Validate(patch Patch) []string {
	var fields []string

	unknown := make([]string, 0)
	for name := range patch {
		if !Module(name).Valid() {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	fields = append(fields, unknown...)

	for _, m := range Modules {
		raw, ok := patch[string(m)]
		if !ok {
			continue
		}
		v.checkObject(string(m), raw, sectionTypes[m], &fields)
	}
	return fields
}

func (v *Validator) checkObject(path string, raw json.RawMessage, t reflect.Type, fields *[]string) {
	var object map[string]json.RawMessage
	if !isObject(raw) || json.Unmarshal(raw, &object) != nil {
		*fields = append(*fields, path)
		return
	}
	keys := make([]string, 0, len(object))
	for key := range object {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fieldPath := path + "." + key
		field, ok := fieldByJSONName(t, key)
		if !ok {
			*fields = append(*fields, fieldPath)
			continue
		}
		v.checkValue(fieldPath, object[key], field.Type, field.Tag.Get("validate"), fields)
	}
}

func (v *Validator) checkValue(path string, raw json.RawMessage, t reflect.Type, rule string, fields *[]string) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		*fields = append(*fields, path)
		return
	}

	var checked any
	switch t.Kind() {
	case reflect.Struct:
		v.checkObject(path, raw, t, fields)
		return
	case reflect.String:
		s, ok := value.(string)
		if !ok {
			*fields = append(*fields, path)
			return
		}
		checked = s
	case reflect.Bool:
		if _, ok := value.(bool); !ok {
			*fields = append(*fields, path)
		}
		return
	case reflect.Int, reflect.Int32, reflect.Int64:
		// The literal itself must be an integer: 6.0 and 1e1 do not decode
		// into an int field.
		n, err := strconv.ParseInt(string(bytes.TrimSpace(raw)), 10, 32)
		if err != nil {
			*fields = append(*fields, path)
			return
		}
		checked = int(n)
	case reflect.Float32, reflect.Float64:
		n, ok := value.(float64)
		if !ok {
			*fields = append(*fields, path)
			return
		}
		checked = n
	case reflect.Slice:
		items, ok := value.([]any)
		if !ok {
			*fields = append(*fields, path)
			return
		}
		for _, item := range items {
			if _, ok := item.(string); !ok {
				*fields = append(*fields, path)
				return
			}
		}
		return
	default:
		*fields = append(*fields, path)
		return
	}

	if rule != "" && v.validate.Var(checked, rule) != nil {
		*fields = append(*fields, path)
	}
}

// ValidateSections runs the struct rules over the merged value of each
// module in modules. A nested object in a patch replaces the old one as a
// whole, so keys the patch left out fall back to zero values and must be
// checked here.
func (v *Validator) ValidateSections(doc Document, modules []Module) []string {
	var fields []string
	for _, m := range modules {
		section := doc.Section(m)
		if section == nil {
			continue
		}
		err := v.validate.Struct(section)
		if err == nil {
			continue
		}
		var invalid validator.ValidationErrors
		if !errors.As(err, &invalid) {
			fields = append(fields, string(m))
			continue
		}
		for _, fe := range invalid {
			fields = append(fields, jsonPath(string(m), sectionTypes[m], fe.StructNamespace()))
		}
	}
	return fields
}

// jsonPath turns a validator struct namespace such as
// "Security.PasswordPolicy.MinLength" into "security.passwordPolicy.minLength".
func jsonPath(module string, t reflect.Type, namespace string) string {
	parts := strings.Split(namespace, ".")
	path := module
	for _, name := range parts[1:] {
		if t.Kind() != reflect.Struct {
			path += "." + name
			continue
		}
		field, ok := t.FieldByName(name)
		if !ok {
			path += "." + name
			continue
		}
		tag := strings.Split(field.Tag.Get("json"), ",")[0]
		if tag == "" {
			tag = name
		}
		path += "." + tag
		t = field.Type
	}
	return path
}

func fieldByJSONName(t reflect.Type, name string) (reflect.StructField, bool) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := strings.Split(field.Tag.Get("json"), ",")[0]
		if tag == name {
			return field, true
		}
	}
	return reflect.StructField{}, false
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
