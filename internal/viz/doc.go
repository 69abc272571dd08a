// Package viz renders recorded runs in the terminal.
//
//   - [TracePlot]: membrane potential over time as a line chart
//   - [RatePlot]: binned network firing rate
//   - [Raster]: per-neuron spike raster
package viz
