package domain

// Package domain contains the core business concepts for the certificate service.
// Keep this package free of transport (HTTP) and infrastructure (SMTP/PDF) concerns.
