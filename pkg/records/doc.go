// Package records reads record sets into grouping rows and writes grouped
// data back out.
//
// # Input Formats
//
// JSON input is an array of objects, one per record:
//
//	[
//	  {"id": "1", "name": "Ada", "dept": "Eng"},
//	  {"id": "2", "name": "Bob", "dept": "Ops"}
//	]
//
// CSV input has a header line naming the fields. With [Options.InferTypes]
// set, cells that parse as integers, floats or booleans are stored as such;
// otherwise every cell is a string.
//
// # Row IDs
//
// The value of the ID field ("id" by default) becomes the row ID and stays in
// the record data. Records without one get a random UUID. Duplicate IDs are
// rejected, since hosts address records by ID.
//
// # Import
//
// Use [Import] to read a file, choosing the format from its extension, or
// [ReadJSON] and [ReadCSV] to read from any io.Reader:
//
//	rows, err := records.Import("staff.csv", records.Options{InferTypes: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Export
//
// [WriteGrouped] writes the grouped-data view of a tree (each header entry
// followed by its subgroups or records), and
// [WriteRows] writes the current record data in source order:
//
//	err := records.WriteGrouped(tree.GroupedData(), os.Stdout)
//
// Both encoders indent with two spaces. Grouped output can be re-imported
// only as data; group state is not preserved.
package records
