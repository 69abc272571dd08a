package neuro

import "errors"

// Domain errors for network construction and stepping.
var (
	// ErrUnknownNeuron indicates a synapse or lookup referenced a
	// neuron id outside the current run.
	ErrUnknownNeuron = errors.New("neuro: unknown neuron id")

	// ErrInvalidDelay indicates a negative synapse delay.
	ErrInvalidDelay = errors.New("neuro: synapse delay must be non-negative")

	// ErrInvalidWeight indicates a NaN or infinite synapse weight.
	ErrInvalidWeight = errors.New("neuro: synapse weight must be finite")

	// ErrFrozenTopology indicates an attempted topology edit after the
	// simulation run started.
	ErrFrozenTopology = errors.New("neuro: topology is frozen once stepping starts")

	// ErrEmptyNetwork indicates a stepper was built over zero neurons.
	ErrEmptyNetwork = errors.New("neuro: network has no neurons")

	// ErrUnknownVariable indicates a lookup of a state variable the
	// neuron's model does not declare.
	ErrUnknownVariable = errors.New("neuro: unknown state variable")

	// ErrQueueCapacity indicates pending spike events exceeded the
	// configured bound.
	ErrQueueCapacity = errors.New("neuro: pending spike events exceed configured capacity")

	// Config validation errors.
	ErrInvalidDt       = errors.New("neuro: dt must be positive and finite")
	ErrInvalidSpeed    = errors.New("neuro: speed multiplier must be positive and finite")
	ErrInvalidCapacity = errors.New("neuro: event capacity must be non-negative")
	ErrInvalidWorkers  = errors.New("neuro: worker count must be non-negative")
)
