package options

import (
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/xattrkit/xattrkit/internal/errors"
)

// Options holds extended options in the form key=value, where key carries
// a namespace prefix: "xattr.max-retries=3".
type Options map[string]string

var registered []Help

// Register records the options of cfg under namespace ns so that List can
// show them. cfg is a struct (or a pointer to one) whose fields carry an
// `option` tag and optionally a `help` tag.
func Register(ns string, cfg any) {
	registered = appendAllOptions(registered, ns, cfg)
}

// List returns all registered options, sorted by namespace and name.
func List() []Help {
	return slices.Clone(registered)
}

func appendAllOptions(opts []Help, ns string, cfg any) []Help {
	for _, opt := range listOptions(cfg) {
		opt.Namespace = ns
		opts = append(opts, opt)
	}

	slices.SortStableFunc(opts, func(a, b Help) int {
		if c := strings.Compare(a.Namespace, b.Namespace); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return opts
}

func listOptions(cfg any) (opts []Help) {
	v := reflect.Indirect(reflect.ValueOf(cfg))

	for i := 0; i < v.NumField(); i++ {
		f := v.Type().Field(i)

		name := f.Tag.Get("option")
		if name == "" {
			continue
		}

		opts = append(opts, Help{Name: name, Text: f.Tag.Get("help")})
	}

	return opts
}

// Help describes a single option.
type Help struct {
	Namespace string
	Name      string
	Text      string
}

// Key returns the fully qualified option name.
func (h Help) Key() string {
	if h.Namespace == "" {
		return h.Name
	}
	return h.Namespace + "." + h.Name
}

// Parse turns key=value strings into Options. Keys are lower-cased and
// whitespace around keys and values is removed. A key without "=" gets an
// empty value.
func Parse(in []string) (Options, error) {
	opts := make(Options, len(in))

	for _, opt := range in {
		key, value, _ := strings.Cut(opt, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		if key == "" {
			return Options{}, errors.Fatalf("empty key is not a valid option")
		}

		if v, ok := opts[key]; ok && v != value {
			return Options{}, errors.Fatalf("key %q present more than once", key)
		}

		opts[key] = value
	}

	return opts, nil
}

// Extract returns the options in namespace ns with the namespace removed
// from their keys.
func (o Options) Extract(ns string) Options {
	if !strings.HasSuffix(ns, ".") {
		ns += "."
	}

	opts := make(Options)
	for k, v := range o {
		if rest, ok := strings.CutPrefix(k, ns); ok {
			opts[rest] = v
		}
	}

	return opts
}

// Unknown returns the keys of o whose namespace is not in known, sorted.
func (o Options) Unknown(known ...string) []string {
	var res []string
	for k := range o {
		ns, _, _ := strings.Cut(k, ".")
		if !slices.Contains(known, ns) {
			res = append(res, k)
		}
	}
	slices.Sort(res)
	return res
}

var durationType = reflect.TypeOf(time.Duration(0))
var byteSizeType = reflect.TypeOf(ByteSize(0))

// Apply sets the fields of the struct dst points to from o, matching keys
// against the `option` tags. ns is only used in error messages.
func (o Options) Apply(ns string, dst any) error {
	v := reflect.ValueOf(dst).Elem()

	fields := make(map[string]int)
	for i := 0; i < v.NumField(); i++ {
		tag := v.Type().Field(i).Tag.Get("option")
		if tag == "" {
			continue
		}

		if _, ok := fields[tag]; ok {
			panic("option tag " + tag + " is not unique in " + v.Type().Name())
		}
		fields[tag] = i
	}

	for key, value := range o {
		i, ok := fields[key]
		if ns != "" {
			key = ns + "." + key
		}
		if !ok {
			return errors.Fatalf("option %v is not known", key)
		}

		if err := setField(v.Field(i), value); err != nil {
			return errors.Fatalf("invalid value %q for option %v: %v", value, key, err)
		}
	}

	return nil
}

func setField(field reflect.Value, value string) error {
	switch field.Type() {
	case durationType:
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil

	case byteSizeType:
		size, err := ParseByteSize(value)
		if err != nil {
			return err
		}
		field.SetUint(uint64(size))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int32, reflect.Int64:
		vi, err := strconv.ParseInt(value, 0, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(vi)

	case reflect.Uint, reflect.Uint32, reflect.Uint64:
		vi, err := strconv.ParseUint(value, 0, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(vi)

	case reflect.Float64:
		vf, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(vf)

	case reflect.Bool:
		vb, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(vb)

	default:
		panic("type " + field.Type().String() + " not handled")
	}

	return nil
}
