package classfile

type ConstantPoolEntry interface {
	Tag() ConstantTag
}

type ConstantUtf8Info struct {
	Value string
}

func (c *ConstantUtf8Info) Tag() ConstantTag { return ConstantUtf8 }

type ConstantClassInfo struct {
	NameIndex uint16
}

func (c *ConstantClassInfo) Tag() ConstantTag { return ConstantClass }

type ConstantNameAndTypeInfo struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

func (c *ConstantNameAndTypeInfo) Tag() ConstantTag { return ConstantNameAndType }

// ConstantOpaqueInfo holds entries the method model never looks into
// (numbers, strings, member references, dynamic call sites). Only their tag
// is kept so the pool stays correctly indexed.
type ConstantOpaqueInfo struct {
	Kind ConstantTag
}

func (c *ConstantOpaqueInfo) Tag() ConstantTag { return c.Kind }

type ConstantPool []ConstantPoolEntry

func (cp ConstantPool) entry(index uint16) ConstantPoolEntry {
	if index == 0 || int(index) > len(cp) {
		return nil
	}
	return cp[index-1]
}

func (cp ConstantPool) GetUtf8(index uint16) string {
	if entry, ok := cp.entry(index).(*ConstantUtf8Info); ok {
		return entry.Value
	}
	return ""
}

func (cp ConstantPool) GetClassName(index uint16) string {
	if entry, ok := cp.entry(index).(*ConstantClassInfo); ok {
		return cp.GetUtf8(entry.NameIndex)
	}
	return ""
}
