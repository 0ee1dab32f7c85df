package yamel

import (
	"reflect"
	"strings"
	"sync"
)

// Struct fields map to YAML keys through `yaml:"..."` tags: a rename, "-"
// to skip, "omitempty" to make the field optional on input. Untagged fields
// use the lowercased field name. Pointer fields are always optional;
// everything else must be present.

type field struct {
	name     string
	index    []int
	optional bool
}

type typeFields struct {
	list   []field
	byName map[string]int
	names  []string
}

var fieldCache sync.Map // reflect.Type -> *typeFields

func cachedFields(t reflect.Type) *typeFields {
	if f, ok := fieldCache.Load(t); ok {
		return f.(*typeFields)
	}
	f := buildFields(t)
	fieldCache.Store(t, f)
	return f
}

func buildFields(t reflect.Type) *typeFields {
	tf := &typeFields{byName: map[string]int{}}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, opts := parseTag(sf.Tag.Get("yaml"))
		if name == "-" {
			continue
		}
		if name == "" {
			name = strings.ToLower(sf.Name)
		}
		optional := sf.Type.Kind() == reflect.Pointer || opts.contains("omitempty")
		tf.byName[name] = len(tf.list)
		tf.list = append(tf.list, field{name: name, index: sf.Index, optional: optional})
		tf.names = append(tf.names, name)
	}
	return tf
}

type tagOptions string

func parseTag(tag string) (string, tagOptions) {
	name, opt, _ := strings.Cut(tag, ",")
	return name, tagOptions(opt)
}

func (o tagOptions) contains(name string) bool {
	s := string(o)
	for s != "" {
		var cur string
		cur, s, _ = strings.Cut(s, ",")
		if cur == name {
			return true
		}
	}
	return false
}
