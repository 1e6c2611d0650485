// Package exporter shapes a normalized report into downloadable artifacts.
//
// This package contains three main components:
//
// ReportSheets: the fixed tabular layout shared by every tabular export
// (Statistics, Popular Rooms, Active Users, Monthly Activity).
//
// BuildWorkbook / CSVWriter: render those sheets as an XLSX workbook
// (excelize) or as CSV sections.
//
// Sink: delivers a finished Artifact. DirSink writes it into a download
// directory under its fixed file name.
//
// Example usage:
//
//	data, err := exporter.BuildWorkbook(report)
//	if err != nil {
//		return err
//	}
//	sink := exporter.NewDirSink("downloads")
//	path, err := sink.Deliver(ctx, exporter.XLSXArtifact(data))
package exporter
