// Package classfile reads the parts of a JVM class file that describe the
// structural signature of its methods.
package classfile

import "strings"

type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool ConstantPool
	AccessFlags  AccessFlags
	ThisClass    uint16
	SuperClass   uint16
	Methods      []MethodInfo
	Attributes   []AttributeInfo
}

// ClassName returns the internal (slash separated) class name.
func (cf *ClassFile) ClassName() string {
	return cf.ConstantPool.GetClassName(cf.ThisClass)
}

// SourceName returns the class name in source form, e.g. com.example.Outer$Inner
// becomes com.example.Outer.Inner.
func (cf *ClassFile) SourceName() string {
	return strings.ReplaceAll(InternalToSourceName(cf.ClassName()), "$", ".")
}

func (cf *ClassFile) IsModule() bool {
	return cf.AccessFlags.IsModule()
}

// SourceFile returns the value of the SourceFile attribute, which compilers
// record as the base name of the declaring .java file.
func (cf *ClassFile) SourceFile() (string, bool) {
	attr := cf.GetAttribute("SourceFile")
	if attr == nil {
		return "", false
	}
	sf := attr.AsSourceFile()
	if sf == nil {
		return "", false
	}
	name := cf.ConstantPool.GetUtf8(sf.SourceFileIndex)
	return name, name != ""
}

// SourcePath joins the package directory with the SourceFile attribute,
// e.g. com/example/Repo.java.
func (cf *ClassFile) SourcePath() (string, bool) {
	name, ok := cf.SourceFile()
	if !ok {
		return "", false
	}
	className := cf.ClassName()
	if slash := strings.LastIndexByte(className, '/'); slash >= 0 {
		return className[:slash+1] + name, true
	}
	return name, true
}

func (cf *ClassFile) GetAttribute(name string) *AttributeInfo {
	for i := range cf.Attributes {
		if cf.ConstantPool.GetUtf8(cf.Attributes[i].NameIndex) == name {
			return &cf.Attributes[i]
		}
	}
	return nil
}
