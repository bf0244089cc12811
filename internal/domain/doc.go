// Package domain models the radar colour tables and the merge of a
// precipitation-intensity chart with a precipitation-type chart.
//
// # Data Source
//
// Both charts are HARMONIE model renderings published per forecast hour as
// PNG images (see the charts adapter). Every timestep has one "simradar"
// image (simulated radar reflectivity, the intensity map) and one "pcptype"
// image (precipitation type). The two images share the same projection and
// extent, so pixel (x, y) in one refers to the same location in the other.
//
// # Chart Conventions
//
// Intensity map:
//
//	Each precipitating pixel is painted with one colour from an ordered
//	39-entry legend running from light grey through greens, yellows, reds
//	and purples back to greys. The position of the colour in the legend is
//	the severity index. Anything else (coastlines, borders, background,
//	labels) is not part of the legend and is left untouched by the merge.
//
// Type map:
//
//	Pixels are painted from one of three small legends (rain, sleet, snow).
//	Pure white (#ffffff) means "no type information" at that pixel. Only the
//	legend a colour belongs to matters, not its position within the legend.
//
// Matching is exact RGBA equality. Anti-aliased or re-compressed charts will
// not classify.
//
// # Merge
//
// The merge scans column by column (x outer, y inner). For each intensity
// pixel the category is taken from the type map at the same position. A white
// type pixel is resolved by looking down the same column for the nearest
// typed pixel; if there is none the category carried from the previous pixel
// of the scan is used. See [CategoryResolver].
//
// The output colour is the category's reference colour with each channel
// pushed toward 255 according to the severity index. See [Blender].
package domain
