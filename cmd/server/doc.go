// Command server runs the compute engine: the gRPC EngineService on
// GRPC_PORT (default 9101) and the REST gateway on HTTP_PORT (default 8080).
//
// Configuration comes from defaults, then an optional -config file, then
// environment variables, then flags.
package main
