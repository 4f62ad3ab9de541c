// Package action defines the contract between the effects manager and the
// action sink: what counts as a dispatchable action, and where it goes.
//
//go:generate mockgen -destination=mocks/mock_sink.go -package=mocks github.com/on-the-ground/effect_ive_dispatch/effects/action Sink
package action
