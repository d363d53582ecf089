package internal

var AppVersion = "1.2.0"
