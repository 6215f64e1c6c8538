// Package metrics exposes rcinit supervisor metrics in prometheus format.
//
// The Recorder owns a private registry rather than the global default one;
// boot serves it through Recorder.Handler when metrics are enabled in
// config.yaml.
package metrics
