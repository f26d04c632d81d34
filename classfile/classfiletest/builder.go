// Package classfiletest assembles small class files in memory for tests.
package classfiletest

import (
	"bytes"
	"encoding/binary"

	"github.com/dhamidi/docsig/classfile"
)

// Method describes one method to emit. Parameter names are written as a
// MethodParameters attribute unless LocalVariables is set, in which case
// they go into the LocalVariableTable of a one-instruction Code attribute.
type Method struct {
	Access         classfile.AccessFlags
	Name           string
	Descriptor     string
	ParameterNames []string
	LocalVariables bool
	Exceptions     []string
	Signature      string
	Deprecated     bool
	Synthetic      bool
}

type Builder struct {
	access     classfile.AccessFlags
	name       string
	super      string
	sourceFile string
	methods    []Method
	longs      []int64

	pool    bytes.Buffer
	count   uint16
	utf8    map[string]uint16
	classes map[string]uint16
}

// New starts a public class with the given internal name, e.g. "com/example/Repo".
func New(name string) *Builder {
	return &Builder{
		access:  classfile.AccPublic,
		name:    name,
		super:   "java/lang/Object",
		utf8:    map[string]uint16{},
		classes: map[string]uint16{},
	}
}

func (b *Builder) Access(flags classfile.AccessFlags) *Builder {
	b.access = flags
	return b
}

func (b *Builder) SourceFile(name string) *Builder {
	b.sourceFile = name
	return b
}

func (b *Builder) Method(m Method) *Builder {
	b.methods = append(b.methods, m)
	return b
}

// Long adds a long constant, which occupies two constant pool slots.
func (b *Builder) Long(v int64) *Builder {
	b.longs = append(b.longs, v)
	return b
}

func (b *Builder) Bytes() []byte {
	b.pool.Reset()
	b.count = 0
	clear(b.utf8)
	clear(b.classes)

	for _, v := range b.longs {
		b.pool.WriteByte(byte(classfile.ConstantLong))
		binary.Write(&b.pool, binary.BigEndian, v)
		b.count += 2
	}

	thisClass := b.class(b.name)
	superClass := b.class(b.super)

	var methods bytes.Buffer
	u2(&methods, uint16(len(b.methods)))
	for _, m := range b.methods {
		b.writeMethod(&methods, m)
	}

	var attrs bytes.Buffer
	if b.sourceFile != "" {
		u2(&attrs, 1)
		b.attribute(&attrs, "SourceFile", func(w *bytes.Buffer) {
			u2(w, b.utf(b.sourceFile))
		})
	} else {
		u2(&attrs, 0)
	}

	var out bytes.Buffer
	binary.Write(&out, binary.BigEndian, uint32(classfile.Magic))
	u2(&out, 0)
	u2(&out, 61)
	u2(&out, b.count+1)
	out.Write(b.pool.Bytes())
	u2(&out, uint16(b.access))
	u2(&out, thisClass)
	u2(&out, superClass)
	u2(&out, 0) // interfaces
	u2(&out, 0) // fields
	out.Write(methods.Bytes())
	out.Write(attrs.Bytes())
	return out.Bytes()
}

func (b *Builder) writeMethod(w *bytes.Buffer, m Method) {
	u2(w, uint16(m.Access))
	u2(w, b.utf(m.Name))
	u2(w, b.utf(m.Descriptor))

	var attrs []func(*bytes.Buffer)
	if len(m.ParameterNames) > 0 && !m.LocalVariables {
		attrs = append(attrs, func(w *bytes.Buffer) {
			b.attribute(w, "MethodParameters", func(w *bytes.Buffer) {
				w.WriteByte(byte(len(m.ParameterNames)))
				for _, name := range m.ParameterNames {
					u2(w, b.utf(name))
					u2(w, 0)
				}
			})
		})
	}
	if m.LocalVariables {
		attrs = append(attrs, func(w *bytes.Buffer) { b.code(w, m) })
	}
	if len(m.Exceptions) > 0 {
		attrs = append(attrs, func(w *bytes.Buffer) {
			b.attribute(w, "Exceptions", func(w *bytes.Buffer) {
				u2(w, uint16(len(m.Exceptions)))
				for _, ex := range m.Exceptions {
					u2(w, b.class(ex))
				}
			})
		})
	}
	if m.Signature != "" {
		attrs = append(attrs, func(w *bytes.Buffer) {
			b.attribute(w, "Signature", func(w *bytes.Buffer) { u2(w, b.utf(m.Signature)) })
		})
	}
	if m.Deprecated {
		attrs = append(attrs, func(w *bytes.Buffer) { b.attribute(w, "Deprecated", func(*bytes.Buffer) {}) })
	}
	if m.Synthetic {
		attrs = append(attrs, func(w *bytes.Buffer) { b.attribute(w, "Synthetic", func(*bytes.Buffer) {}) })
	}

	u2(w, uint16(len(attrs)))
	for _, write := range attrs {
		write(w)
	}
}

func (b *Builder) code(w *bytes.Buffer, m Method) {
	desc, _ := classfile.ParseMethodDescriptor(m.Descriptor)
	b.attribute(w, "Code", func(w *bytes.Buffer) {
		u2(w, 1)
		u2(w, 8)
		binary.Write(w, binary.BigEndian, uint32(1))
		w.WriteByte(0xB1) // return
		u2(w, 0)          // exception table
		u2(w, 1)
		b.attribute(w, "LocalVariableTable", func(w *bytes.Buffer) {
			type local struct {
				name string
				slot int
			}
			var locals []local
			slot := 0
			if !m.Access.IsStatic() {
				locals = append(locals, local{"this", 0})
				slot = 1
			}
			for i, name := range m.ParameterNames {
				locals = append(locals, local{name, slot})
				if desc != nil && i < len(desc.Params) {
					slot += desc.Params[i].Slots()
				} else {
					slot++
				}
			}
			u2(w, uint16(len(locals)))
			for _, l := range locals {
				u2(w, 0)
				u2(w, 1)
				u2(w, b.utf(l.name))
				u2(w, b.utf("Ljava/lang/Object;"))
				u2(w, uint16(l.slot))
			}
		})
	})
}

func (b *Builder) attribute(w *bytes.Buffer, name string, body func(*bytes.Buffer)) {
	u2(w, b.utf(name))
	var info bytes.Buffer
	body(&info)
	binary.Write(w, binary.BigEndian, uint32(info.Len()))
	w.Write(info.Bytes())
}

func (b *Builder) utf(s string) uint16 {
	if idx, ok := b.utf8[s]; ok {
		return idx
	}
	b.pool.WriteByte(byte(classfile.ConstantUtf8))
	u2(&b.pool, uint16(len(s)))
	b.pool.WriteString(s)
	b.count++
	b.utf8[s] = b.count
	return b.count
}

func (b *Builder) class(name string) uint16 {
	if idx, ok := b.classes[name]; ok {
		return idx
	}
	nameIndex := b.utf(name)
	b.pool.WriteByte(byte(classfile.ConstantClass))
	u2(&b.pool, nameIndex)
	b.count++
	b.classes[name] = b.count
	return b.count
}

func u2(w *bytes.Buffer, v uint16) {
	binary.Write(w, binary.BigEndian, v)
}
