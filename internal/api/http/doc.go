// Package http is the REST gateway in front of the engine.
//
// Routes:
//   - GET  /engine/hello?name=   greeting, name defaults to "World"
//   - POST /engine/pi            {"samples": n}
//   - POST /engine/matmul        {"a": {rows, cols, data}, "b": {...}}
//   - POST /engine/stats         {"data": [...], "sample": bool}
//   - GET  /health, /metrics, /metrics/json
//
// Bodies are decoded and encoded with sonic. Requests that fail validation
// get 400 with the field and reason before the backend is called.
package http
