// Package engine drives the simulation: network construction, the
// spike event queue and the tick stepper. A tick runs fixed phases
// (deliver due spikes, evaluate update rules, check spike conditions)
// so that synaptic effects only ever travel through the delayed event
// queue and neuron update order is unobservable.
package engine
