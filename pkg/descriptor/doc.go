// Package descriptor extracts raw field declarations from DBC row descriptors.
//
// A descriptor unit is a source file describing one record type. Each field of
// the record is declared as a getter that constructs a typed cell over the row
// buffer:
//
//	get ID() { return new DBCKeyCell(this,this.buffer,this.offset+0) }
//	get Name() { return new DBCLocStringCell(this,this.buffer,this.offset+4) }
//	get Attributes() { return new DBCIntArrayCell(this,2,this.buffer,this.offset+72) }
//
// The scanner tokenizes the unit and runs a small recursive-descent parser over
// the token stream. Only getters that return a new "...Cell" are field
// declarations; everything else in the unit is skipped. A malformed field
// declaration produces a *ParseError and the parser resynchronizes on the next
// getter, so one bad line never hides the rest of the unit.
//
// Declarations are returned sorted by name. Their order carries no layout
// meaning; the schema builder orders fields by byte offset.
package descriptor
