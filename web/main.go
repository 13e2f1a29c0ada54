package main

import (
	"flag"
	"log"
	"os"

	"github.com/df07/go-sphere-tracer/web/server"
)

func main() {
	port := flag.Int("port", 8080, "Port to serve on")
	staticDir := flag.String("static", "static/", "Directory holding the viewer page")
	flag.Parse()

	if _, err := os.Stat(*staticDir); err != nil {
		log.Printf("Warning: static directory %s not found, only the API will be served", *staticDir)
	}

	webServer := server.NewServer(*port, *staticDir)

	log.Printf("Sphere Tracer Web Server")
	log.Printf("Visit http://localhost:%d to watch the spheres rotate", *port)

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
