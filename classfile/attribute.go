package classfile

import (
	"encoding/binary"
)

// AttributeInfo is a raw attribute. Parsed holds the decoded form for the
// attributes method introspection relies on and is nil for all others.
type AttributeInfo struct {
	NameIndex uint16
	Info      []byte
	Parsed    interface{}
}

type CodeAttribute struct {
	MaxStack   uint16
	MaxLocals  uint16
	Attributes []AttributeInfo
}

type LocalVariableTableAttribute struct {
	LocalVariableTable []LocalVariableEntry
}

type LocalVariableEntry struct {
	StartPC         uint16
	Length          uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Index           uint16
}

type SourceFileAttribute struct {
	SourceFileIndex uint16
}

type ExceptionsAttribute struct {
	ExceptionIndexTable []uint16
}

type SignatureAttribute struct {
	SignatureIndex uint16
}

type MethodParametersAttribute struct {
	Parameters []MethodParameter
}

type MethodParameter struct {
	NameIndex   uint16
	AccessFlags AccessFlags
}

type SyntheticAttribute struct{}

type DeprecatedAttribute struct{}

func parseAttribute(name string, info []byte, cp ConstantPool) interface{} {
	switch name {
	case "Code":
		return parseCodeAttribute(info, cp)
	case "LocalVariableTable":
		return parseLocalVariableTableAttribute(info)
	case "SourceFile":
		if len(info) < 2 {
			return nil
		}
		return &SourceFileAttribute{SourceFileIndex: binary.BigEndian.Uint16(info)}
	case "Signature":
		if len(info) < 2 {
			return nil
		}
		return &SignatureAttribute{SignatureIndex: binary.BigEndian.Uint16(info)}
	case "Exceptions":
		return parseExceptionsAttribute(info)
	case "MethodParameters":
		return parseMethodParametersAttribute(info)
	case "Synthetic":
		return &SyntheticAttribute{}
	case "Deprecated":
		return &DeprecatedAttribute{}
	}
	return nil
}

func (a *AttributeInfo) AsCode() *CodeAttribute {
	code, _ := a.Parsed.(*CodeAttribute)
	return code
}

func (a *AttributeInfo) AsLocalVariableTable() *LocalVariableTableAttribute {
	lvt, _ := a.Parsed.(*LocalVariableTableAttribute)
	return lvt
}

func (a *AttributeInfo) AsSourceFile() *SourceFileAttribute {
	sf, _ := a.Parsed.(*SourceFileAttribute)
	return sf
}

func (a *AttributeInfo) AsSignature() *SignatureAttribute {
	sig, _ := a.Parsed.(*SignatureAttribute)
	return sig
}

func (a *AttributeInfo) AsExceptions() *ExceptionsAttribute {
	ex, _ := a.Parsed.(*ExceptionsAttribute)
	return ex
}

func (a *AttributeInfo) AsMethodParameters() *MethodParametersAttribute {
	mp, _ := a.Parsed.(*MethodParametersAttribute)
	return mp
}

// parseCodeAttribute keeps only the nested attributes; bytecode and the
// exception table are skipped.
func parseCodeAttribute(info []byte, cp ConstantPool) *CodeAttribute {
	if len(info) < 8 {
		return nil
	}

	code := &CodeAttribute{
		MaxStack:  binary.BigEndian.Uint16(info[0:2]),
		MaxLocals: binary.BigEndian.Uint16(info[2:4]),
	}

	codeLength := binary.BigEndian.Uint32(info[4:8])
	offset := 8 + int(codeLength)
	if len(info) < offset+2 {
		return nil
	}

	exceptionTableLength := int(binary.BigEndian.Uint16(info[offset : offset+2]))
	offset += 2 + exceptionTableLength*8

	if len(info) < offset+2 {
		return nil
	}
	attributesCount := binary.BigEndian.Uint16(info[offset : offset+2])
	offset += 2

	code.Attributes = make([]AttributeInfo, 0, attributesCount)
	for i := uint16(0); i < attributesCount; i++ {
		if len(info) < offset+6 {
			return nil
		}
		nameIndex := binary.BigEndian.Uint16(info[offset : offset+2])
		attrLength := int(binary.BigEndian.Uint32(info[offset+2 : offset+6]))
		offset += 6

		if len(info) < offset+attrLength {
			return nil
		}
		attrInfo := info[offset : offset+attrLength]
		offset += attrLength

		attr := AttributeInfo{NameIndex: nameIndex, Info: attrInfo}
		if cp.GetUtf8(nameIndex) == "LocalVariableTable" {
			attr.Parsed = parseLocalVariableTableAttribute(attrInfo)
		}
		code.Attributes = append(code.Attributes, attr)
	}

	return code
}

func parseLocalVariableTableAttribute(info []byte) *LocalVariableTableAttribute {
	if len(info) < 2 {
		return nil
	}

	count := binary.BigEndian.Uint16(info[0:2])
	if len(info) < 2+int(count)*10 {
		return nil
	}

	lvt := &LocalVariableTableAttribute{
		LocalVariableTable: make([]LocalVariableEntry, count),
	}

	offset := 2
	for i := uint16(0); i < count; i++ {
		lvt.LocalVariableTable[i] = LocalVariableEntry{
			StartPC:         binary.BigEndian.Uint16(info[offset : offset+2]),
			Length:          binary.BigEndian.Uint16(info[offset+2 : offset+4]),
			NameIndex:       binary.BigEndian.Uint16(info[offset+4 : offset+6]),
			DescriptorIndex: binary.BigEndian.Uint16(info[offset+6 : offset+8]),
			Index:           binary.BigEndian.Uint16(info[offset+8 : offset+10]),
		}
		offset += 10
	}

	return lvt
}

func parseExceptionsAttribute(info []byte) *ExceptionsAttribute {
	if len(info) < 2 {
		return nil
	}
	count := binary.BigEndian.Uint16(info[0:2])
	if len(info) < 2+int(count)*2 {
		return nil
	}

	ex := &ExceptionsAttribute{
		ExceptionIndexTable: make([]uint16, count),
	}

	offset := 2
	for i := uint16(0); i < count; i++ {
		ex.ExceptionIndexTable[i] = binary.BigEndian.Uint16(info[offset : offset+2])
		offset += 2
	}

	return ex
}

func parseMethodParametersAttribute(info []byte) *MethodParametersAttribute {
	if len(info) < 1 {
		return nil
	}

	count := int(info[0])
	if len(info) < 1+count*4 {
		return nil
	}

	mp := &MethodParametersAttribute{
		Parameters: make([]MethodParameter, count),
	}

	offset := 1
	for i := 0; i < count; i++ {
		mp.Parameters[i] = MethodParameter{
			NameIndex:   binary.BigEndian.Uint16(info[offset : offset+2]),
			AccessFlags: AccessFlags(binary.BigEndian.Uint16(info[offset+2 : offset+4])),
		}
		offset += 4
	}

	return mp
}
