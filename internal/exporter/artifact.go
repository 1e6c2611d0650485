package exporter

// Fixed names of the downloaded artifacts
const (
	CSVFileName  = "campus_room_report.csv"
	XLSXFileName = "campus_room_report.xlsx"
	PDFDataName  = "campus_room_report.json"

	CSVContentType  = "text/csv"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	JSONContentType = "application/json"
)

// Artifact is a finished export ready for delivery.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

// CSVArtifact wraps report CSV bytes under the fixed file name.
func CSVArtifact(data []byte) Artifact {
	return Artifact{Name: CSVFileName, ContentType: CSVContentType, Data: data}
}

// XLSXArtifact wraps a workbook under the fixed file name.
func XLSXArtifact(data []byte) Artifact {
	return Artifact{Name: XLSXFileName, ContentType: XLSXContentType, Data: data}
}

// PDFDataArtifact wraps PDF-ready report data for tools that save it.
func PDFDataArtifact(data []byte) Artifact {
	return Artifact{Name: PDFDataName, ContentType: JSONContentType, Data: data}
}
