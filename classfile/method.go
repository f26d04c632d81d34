package classfile

type MethodInfo struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo
}

func (m *MethodInfo) Name(cp ConstantPool) string {
	return cp.GetUtf8(m.NameIndex)
}

func (m *MethodInfo) Descriptor(cp ConstantPool) string {
	return cp.GetUtf8(m.DescriptorIndex)
}

func (m *MethodInfo) GetAttribute(cp ConstantPool, name string) *AttributeInfo {
	for i := range m.Attributes {
		if cp.GetUtf8(m.Attributes[i].NameIndex) == name {
			return &m.Attributes[i]
		}
	}
	return nil
}

func (m *MethodInfo) GetCodeAttribute(cp ConstantPool) *CodeAttribute {
	attr := m.GetAttribute(cp, "Code")
	if attr == nil {
		return nil
	}
	return attr.AsCode()
}

func (m *MethodInfo) IsPublic() bool    { return m.AccessFlags.IsPublic() }
func (m *MethodInfo) IsPrivate() bool   { return m.AccessFlags.IsPrivate() }
func (m *MethodInfo) IsProtected() bool { return m.AccessFlags.IsProtected() }
func (m *MethodInfo) IsStatic() bool    { return m.AccessFlags.IsStatic() }
func (m *MethodInfo) IsFinal() bool     { return m.AccessFlags.IsFinal() }
func (m *MethodInfo) IsBridge() bool    { return m.AccessFlags.IsBridge() }
func (m *MethodInfo) IsVarargs() bool   { return m.AccessFlags.IsVarargs() }

// IsSynthetic reports compiler-generated methods, marked either by the access
// flag or by the older Synthetic attribute.
func (m *MethodInfo) IsSynthetic(cp ConstantPool) bool {
	return m.AccessFlags.IsSynthetic() || m.GetAttribute(cp, "Synthetic") != nil
}

func (m *MethodInfo) IsDeprecated(cp ConstantPool) bool {
	return m.GetAttribute(cp, "Deprecated") != nil
}

func (m *MethodInfo) IsConstructor(cp ConstantPool) bool {
	return m.Name(cp) == "<init>"
}

func (m *MethodInfo) IsStaticInitializer(cp ConstantPool) bool {
	return m.Name(cp) == "<clinit>"
}

// ParsedDescriptor returns the erased method type, or nil when the
// descriptor is malformed.
func (m *MethodInfo) ParsedDescriptor(cp ConstantPool) *MethodSig {
	md, err := ParseMethodDescriptor(m.Descriptor(cp))
	if err != nil {
		return nil
	}
	return md
}

// GenericSignature parses the Signature attribute. It reports false when the
// attribute is missing or cannot be parsed.
func (m *MethodInfo) GenericSignature(cp ConstantPool) (*MethodSig, bool) {
	raw := m.Signature(cp)
	if raw == "" {
		return nil, false
	}
	sig, err := ParseMethodSignature(raw)
	if err != nil {
		return nil, false
	}
	return sig, true
}

// Signature returns the generic signature attribute, if any.
func (m *MethodInfo) Signature(cp ConstantPool) string {
	attr := m.GetAttribute(cp, "Signature")
	if attr == nil {
		return ""
	}
	if sig := attr.AsSignature(); sig != nil {
		return cp.GetUtf8(sig.SignatureIndex)
	}
	return ""
}

// Exceptions returns the declared checked exceptions in source form.
func (m *MethodInfo) Exceptions(cp ConstantPool) []string {
	attr := m.GetAttribute(cp, "Exceptions")
	if attr == nil {
		return nil
	}
	ex := attr.AsExceptions()
	if ex == nil {
		return nil
	}
	result := make([]string, len(ex.ExceptionIndexTable))
	for i, idx := range ex.ExceptionIndexTable {
		result[i] = InternalToSourceName(cp.GetClassName(idx))
	}
	return result
}

// ParameterNames returns one name per descriptor parameter. Names come from
// the MethodParameters attribute when present, otherwise from the local
// variable table of the method body. Unknown names are empty strings.
func (m *MethodInfo) ParameterNames(cp ConstantPool) []string {
	desc := m.ParsedDescriptor(cp)
	if desc == nil {
		return nil
	}
	names := make([]string, len(desc.Params))

	if attr := m.GetAttribute(cp, "MethodParameters"); attr != nil {
		if mp := attr.AsMethodParameters(); mp != nil && len(mp.Parameters) == len(names) {
			for i, p := range mp.Parameters {
				names[i] = cp.GetUtf8(p.NameIndex)
			}
			return names
		}
	}

	code := m.GetCodeAttribute(cp)
	if code == nil {
		return names
	}
	var lvt *LocalVariableTableAttribute
	for i := range code.Attributes {
		if attr := code.Attributes[i].AsLocalVariableTable(); attr != nil {
			lvt = attr
			break
		}
	}
	if lvt == nil {
		return names
	}

	slot := 0
	if !m.IsStatic() {
		slot = 1
	}
	for i, p := range desc.Params {
		for _, lv := range lvt.LocalVariableTable {
			if int(lv.Index) == slot && lv.StartPC == 0 {
				names[i] = cp.GetUtf8(lv.NameIndex)
				break
			}
		}
		slot += p.Slots()
	}
	return names
}
