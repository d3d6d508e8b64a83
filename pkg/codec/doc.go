// Package codec decodes DBC record files using a schema recovered from the
// record type's descriptor.
//
// # File Format
//
// A DBC file is a fixed header, a contiguous record area and a trailing string
// table, all little-endian:
//
//	[Magic(4)][RecordCount(4)][FieldCount(4)][RecordSize(4)][StringTableSize(4)]
//	[RecordCount * RecordSize bytes of records]
//	[StringTableSize bytes of NUL-terminated UTF-8 strings]
//
// Fields:
//   - Magic: 4-byte ASCII tag identifying the format variant ("WDBC")
//   - RecordCount: number of records (int32)
//   - FieldCount: declared record width in 4-byte words (uint32)
//   - RecordSize: bytes per record (int32)
//   - StringTableSize: bytes in the string table (int32)
//
// String fields hold a byte offset into the string table. Offset 0 is the
// empty string; any other offset starts a string that runs to the first NUL or
// the end of the table.
//
// # Decoding
//
// Decoding is schema driven. There is no record struct per type: each field of
// the schema is read at its byte offset inside the record, and the result is a
// Record, an ordered list of named Values.
//
//	doc, err := schema.LoadDocument("schema.json")
//	if err != nil {
//	    return err
//	}
//	spell, err := doc.Get("Spell")
//	if err != nil {
//	    return err
//	}
//
//	result, err := codec.DecodeFile(spell, "Spell.dbc", codec.Options{Limit: 100})
//	if err != nil {
//	    return err // *FormatError or *BoundsError
//	}
//	for _, rec := range result.Records {
//	    name, _ := rec.Get("Name")
//	    fmt.Println(name.Str())
//	}
//
// Array fields other than strings expand to one column per element, named
// Field_1 through Field_N. String arrays, including the 17-element localized
// string cell, keep only their first element under the bare field name unless
// Options.AllLocales is set.
//
// # Error Handling
//
// A wrong magic tag or a malformed header is a *FormatError. A field that does
// not fit the declared record size, a record area that runs past the buffer, or
// a string offset outside the string table is a *BoundsError. Both abort the
// whole file: Decode returns no records. A schema whose word width disagrees
// with the header's FieldCount is only reported as a *LayoutMismatchWarning,
// since the header's RecordSize is what drives navigation.
//
// # Thread Safety
//
// Decoding holds no shared state. Any number of files can be decoded
// concurrently against the same Schema. A Reader itself is not safe for
// concurrent use.
package codec
