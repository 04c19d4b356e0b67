package plaza

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/beevik/etree"
)

// XML namespaces used by the request bodies
const (
	servicesNamespaceFormat = "https://plazaapi.bol.com/services/xsd/v%s/plazaapi.xsd"
	OffersNamespace         = "https://plazaapi.bol.com/offers/xsd/api-2.0.xsd"
)

// ServicesNamespace returns the services schema namespace for a schema version ("1", "2", "2.1").
func ServicesNamespace(version string) string {
	return fmt.Sprintf(servicesNamespaceFormat, version)
}

// Entity is a Plaza record serialized as a single XML element.
//
// Implementations are structs whose fields describe the schema:
//
//	string fields        one child element per attribute, in declared order
//	*T fields            a nested entity, element named after the field
//	[]T fields           repeated entities wrapped in an element named after the field
//	[]T `plaza:",flat"`  repeated entities directly under the parent
//
// The `plaza:"Name"` tag overrides the element name; `plaza:"-"` skips a field.
type Entity interface {
	ElementName() string
}

type fieldKind int

const (
	attrField fieldKind = iota
	nestedField
	listField
)

type fieldSpec struct {
	index int
	name  string
	kind  fieldKind
	flat  bool
	elem  reflect.Type // struct type of nested and list fields
	item  string       // element name of list items
}

type entitySchema struct {
	fields []fieldSpec
}

var (
	schemaCache sync.Map // reflect.Type -> *entitySchema
	entityType  = reflect.TypeOf((*Entity)(nil)).Elem()
)

func schemaFor(t reflect.Type) *entitySchema {
	if s, ok := schemaCache.Load(t); ok {
		return s.(*entitySchema)
	}

	s := &entitySchema{}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get("plaza")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = sf.Name
		}

		spec := fieldSpec{index: i, name: name, flat: opts == "flat"}
		switch {
		case sf.Type.Kind() == reflect.String:
			spec.kind = attrField
		case sf.Type.Kind() == reflect.Pointer && isEntityStruct(sf.Type.Elem()):
			spec.kind = nestedField
			spec.elem = sf.Type.Elem()
		case sf.Type.Kind() == reflect.Slice && isEntityStruct(sf.Type.Elem()):
			spec.kind = listField
			spec.elem = sf.Type.Elem()
			spec.item = elementNameOf(sf.Type.Elem())
		default:
			panic(fmt.Sprintf("plaza: unsupported field %s.%s of type %s", t.Name(), sf.Name, sf.Type))
		}
		s.fields = append(s.fields, spec)
	}

	actual, _ := schemaCache.LoadOrStore(t, s)
	return actual.(*entitySchema)
}

func isEntityStruct(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && t.Implements(entityType)
}

func elementNameOf(t reflect.Type) string {
	return reflect.Zero(t).Interface().(Entity).ElementName()
}

// Marshal renders an entity as an XML document. Empty attributes are left out.
// namespace is written as the root xmlns when non-empty.
func Marshal(e Entity, namespace string) ([]byte, error) {
	v := reflect.ValueOf(e)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, errors.New("plaza: marshal nil entity")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("plaza: cannot marshal %T", e)
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement(e.ElementName())
	if namespace != "" {
		root.CreateAttr("xmlns", namespace)
	}
	encodeEntity(root, v)

	data, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("plaza: marshal %s: %w", e.ElementName(), err)
	}
	return data, nil
}

func encodeEntity(el *etree.Element, v reflect.Value) {
	for _, f := range schemaFor(v.Type()).fields {
		fv := v.Field(f.index)
		switch f.kind {
		case attrField:
			if s := fv.String(); s != "" {
				el.CreateElement(f.name).SetText(s)
			}
		case nestedField:
			if !fv.IsNil() {
				encodeEntity(el.CreateElement(f.name), fv.Elem())
			}
		case listField:
			if fv.Len() == 0 {
				continue
			}
			parent := el
			if !f.flat {
				parent = el.CreateElement(f.name)
			}
			for i := 0; i < fv.Len(); i++ {
				encodeEntity(parent.CreateElement(f.item), fv.Index(i))
			}
		}
	}
}

func decodeEntity(el *etree.Element, v reflect.Value) {
	for _, f := range schemaFor(v.Type()).fields {
		fv := v.Field(f.index)
		switch f.kind {
		case attrField:
			if c := el.SelectElement(f.name); c != nil {
				fv.SetString(c.Text())
			}
		case nestedField:
			if c := el.SelectElement(f.name); c != nil {
				p := reflect.New(f.elem)
				decodeEntity(c, p.Elem())
				fv.Set(p)
			}
		case listField:
			container := el
			if !f.flat {
				if container = el.SelectElement(f.name); container == nil {
					continue
				}
			}
			items := container.SelectElements(f.item)
			list := reflect.MakeSlice(fv.Type(), 0, len(items))
			for _, item := range items {
				ev := reflect.New(f.elem).Elem()
				decodeEntity(item, ev)
				list = reflect.Append(list, ev)
			}
			fv.Set(list)
		}
	}
}

// Unmarshal populates e, which must be a pointer to an entity struct, from
// an XML document. The document root is used when it carries the entity's
// element name, otherwise the first descendant that does.
func Unmarshal(data []byte, e Entity) error {
	v := reflect.ValueOf(e)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("plaza: unmarshal target must be a non-nil struct pointer, got %T", e)
	}

	root, perr := parseDocument(data)
	if perr != nil {
		return perr
	}

	el := root
	name := e.ElementName()
	if root.Tag != name {
		if found := root.FindElement(".//" + name); found != nil {
			el = found
		}
	}
	decodeEntity(el, v.Elem())
	return nil
}

// UnmarshalCollection returns every element named after T found either as
// the document root or directly under it, in document order. An empty body
// or a document without matches yields an empty slice.
func UnmarshalCollection[T Entity](data []byte) ([]T, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []T{}, nil
	}

	root, perr := parseDocument(data)
	if perr != nil {
		return nil, perr
	}

	var zero T
	name := zero.ElementName()

	var elements []*etree.Element
	if root.Tag == name {
		elements = []*etree.Element{root}
	} else {
		elements = root.SelectElements(name)
	}

	out := make([]T, 0, len(elements))
	for _, el := range elements {
		var item T
		decodeEntity(el, reflect.ValueOf(&item).Elem())
		out = append(out, item)
	}
	return out, nil
}

func parseDocument(data []byte) (*etree.Element, *ParseError) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, &ParseError{Err: err}
	}
	root := doc.Root()
	if root == nil {
		return nil, &ParseError{Err: errors.New("document has no root element")}
	}
	return root, nil
}
