package classfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

type reader struct {
	r   io.Reader
	err error
}

func (r *reader) readU1() uint8 {
	if r.err != nil {
		return 0
	}
	var buf [1]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return buf[0]
}

func (r *reader) readU2() uint16 {
	if r.err != nil {
		return 0
	}
	var buf [2]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return binary.BigEndian.Uint16(buf[:])
}

func (r *reader) readU4() uint32 {
	if r.err != nil {
		return 0
	}
	var buf [4]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return binary.BigEndian.Uint32(buf[:])
}

// readBytes reads n bytes. The buffer grows with the data actually read,
// so a corrupt length cannot allocate more than the input holds.
func (r *reader) readBytes(n int64) []byte {
	if r.err != nil {
		return nil
	}
	var buf bytes.Buffer
	if n <= smallRead {
		buf.Grow(int(n))
	}
	r.copy(&buf, n)
	return buf.Bytes()
}

func (r *reader) skip(n int64) {
	if r.err == nil {
		r.copy(io.Discard, n)
	}
}

func (r *reader) copy(w io.Writer, n int64) {
	read, err := io.CopyN(w, r.r, n)
	if err == io.EOF || (err == nil && read < n) {
		err = fmt.Errorf("%w: %d of %d bytes", io.ErrUnexpectedEOF, read, n)
	}
	r.err = err
}

const smallRead = 64 << 10

func ParseFile(path string) (*ClassFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open class file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func Parse(rd io.Reader) (*ClassFile, error) {
	r := &reader{r: rd}

	magic := r.readU4()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", r.err)
	}
	if magic != Magic {
		return nil, fmt.Errorf("invalid magic number: 0x%X (expected 0xCAFEBABE)", magic)
	}

	cf := &ClassFile{
		MinorVersion: r.readU2(),
		MajorVersion: r.readU2(),
	}
	if r.err != nil {
		return nil, fmt.Errorf("failed to read version: %w", r.err)
	}

	constantPoolCount := r.readU2()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read constant pool count: %w", r.err)
	}
	if constantPoolCount == 0 {
		return nil, fmt.Errorf("invalid constant pool count: 0")
	}

	cf.ConstantPool = make(ConstantPool, constantPoolCount-1)
	for i := uint16(1); i < constantPoolCount; i++ {
		entry, wide, err := readConstantPoolEntry(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read constant pool entry %d: %w", i, err)
		}
		cf.ConstantPool[i-1] = entry
		if wide {
			// long and double take two slots
			i++
		}
	}

	cf.AccessFlags = AccessFlags(r.readU2())
	cf.ThisClass = r.readU2()
	cf.SuperClass = r.readU2()

	interfacesCount := r.readU2()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read class info: %w", r.err)
	}
	r.skip(int64(interfacesCount) * 2)
	if r.err != nil {
		return nil, fmt.Errorf("failed to read interfaces: %w", r.err)
	}

	fieldsCount := r.readU2()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read fields count: %w", r.err)
	}
	for i := uint16(0); i < fieldsCount; i++ {
		if _, err := readMember(r, cf.ConstantPool); err != nil {
			return nil, fmt.Errorf("failed to read field %d: %w", i, err)
		}
	}

	methodsCount := r.readU2()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read methods count: %w", r.err)
	}

	cf.Methods = make([]MethodInfo, methodsCount)
	for i := uint16(0); i < methodsCount; i++ {
		method, err := readMember(r, cf.ConstantPool)
		if err != nil {
			return nil, fmt.Errorf("failed to read method %d: %w", i, err)
		}
		cf.Methods[i] = *method
	}

	attributes, err := readAttributes(r, cf.ConstantPool)
	if err != nil {
		return nil, fmt.Errorf("failed to read class attributes: %w", err)
	}
	cf.Attributes = attributes

	return cf, nil
}

func readConstantPoolEntry(r *reader) (ConstantPoolEntry, bool, error) {
	tag := ConstantTag(r.readU1())
	if r.err != nil {
		return nil, false, r.err
	}

	var entry ConstantPoolEntry
	wide := false

	switch tag {
	case ConstantUtf8:
		length := r.readU2()
		raw := r.readBytes(int64(length))
		entry = &ConstantUtf8Info{Value: DecodeModifiedUtf8(raw)}
	case ConstantClass:
		entry = &ConstantClassInfo{NameIndex: r.readU2()}
	case ConstantNameAndType:
		entry = &ConstantNameAndTypeInfo{
			NameIndex:       r.readU2(),
			DescriptorIndex: r.readU2(),
		}
	case ConstantInteger, ConstantFloat,
		ConstantFieldref, ConstantMethodref, ConstantInterfaceMethodref,
		ConstantDynamic, ConstantInvokeDynamic:
		r.skip(4)
		entry = &ConstantOpaqueInfo{Kind: tag}
	case ConstantLong, ConstantDouble:
		r.skip(8)
		entry = &ConstantOpaqueInfo{Kind: tag}
		wide = true
	case ConstantString, ConstantMethodType, ConstantModule, ConstantPackage:
		r.skip(2)
		entry = &ConstantOpaqueInfo{Kind: tag}
	case ConstantMethodHandle:
		r.skip(3)
		entry = &ConstantOpaqueInfo{Kind: tag}
	default:
		return nil, false, fmt.Errorf("unknown constant pool tag: %d", tag)
	}

	if r.err != nil {
		return nil, false, r.err
	}
	return entry, wide, nil
}

func readMember(r *reader, cp ConstantPool) (*MethodInfo, error) {
	member := &MethodInfo{
		AccessFlags:     AccessFlags(r.readU2()),
		NameIndex:       r.readU2(),
		DescriptorIndex: r.readU2(),
	}
	if r.err != nil {
		return nil, r.err
	}

	attributes, err := readAttributes(r, cp)
	if err != nil {
		return nil, err
	}
	member.Attributes = attributes
	return member, nil
}

func readAttributes(r *reader, cp ConstantPool) ([]AttributeInfo, error) {
	count := r.readU2()
	if r.err != nil {
		return nil, r.err
	}

	attributes := make([]AttributeInfo, count)
	for i := uint16(0); i < count; i++ {
		nameIndex := r.readU2()
		length := r.readU4()
		info := r.readBytes(int64(length))
		if r.err != nil {
			return nil, r.err
		}
		attributes[i] = AttributeInfo{
			NameIndex: nameIndex,
			Info:      info,
			Parsed:    parseAttribute(cp.GetUtf8(nameIndex), info, cp),
		}
	}
	return attributes, nil
}

func DecodeModifiedUtf8(bytes []byte) string {
	runes := make([]rune, 0, len(bytes))
	i := 0
	for i < len(bytes) {
		b := bytes[i]
		if b&0x80 == 0 {
			runes = append(runes, rune(b))
			i++
		} else if b&0xE0 == 0xC0 {
			if i+1 >= len(bytes) {
				break
			}
			runes = append(runes, rune(b&0x1F)<<6|rune(bytes[i+1]&0x3F))
			i += 2
		} else if b&0xF0 == 0xE0 {
			if i+2 >= len(bytes) {
				break
			}
			r := rune(b&0x0F)<<12 | rune(bytes[i+1]&0x3F)<<6 | rune(bytes[i+2]&0x3F)
			if r >= 0xD800 && r <= 0xDBFF && i+5 < len(bytes) && bytes[i+3] == 0xED {
				low := rune(bytes[i+3]&0x0F)<<12 | rune(bytes[i+4]&0x3F)<<6 | rune(bytes[i+5]&0x3F)
				if low >= 0xDC00 && low <= 0xDFFF {
					runes = append(runes, 0x10000+((r-0xD800)<<10)+(low-0xDC00))
					i += 6
					continue
				}
			}
			runes = append(runes, r)
			i += 3
		} else {
			runes = append(runes, rune(b))
			i++
		}
	}
	return string(runes)
}
