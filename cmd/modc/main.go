package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/goburrow/modbus"

	"github.com/nordfrost-se/controller/pkg/modbusclient"
)

// modc pokes the fridge I/O module directly, for bench bring-up and fault
// finding. Temperatures live in input registers 0 (air) and 1 (evaporator)
// scaled by 100, the compressor relay is coil 0.
func main() {
	address := flag.String("addr", "", "tcp modbus address")
	slaveID := flag.Int("slave", 1, "modbus slave id")

	inputreg := flag.Int("inputreg", 0, "input register to read, scaled /100")
	coil := flag.Int("coil", 0, "coil to read")
	relay := flag.String("relay", "", "set the relay coil: on or off")
	flag.Parse()

	handler := modbus.NewTCPClientHandler(*address)
	handler.SlaveId = byte(*slaveID)
	client := modbusclient.New(modbus.NewClient(handler), handler.Close)
	defer handler.Close()

	switch {
	case isFlagPassed("relay"):
		value := uint16(0)
		if *relay == "on" {
			value = modbusclient.WriteCoilValueOn
		}
		_, err := client.WriteSingleCoil(0, value)
		if err != nil {
			log.Fatal("write relay: ", err)
		}
		fmt.Println("relay set", *relay)
	case isFlagPassed("coil"):
		on, err := client.ReadCoil(uint16(*coil))
		if err != nil {
			log.Fatal("read coil: ", err)
		}
		fmt.Printf("coil %d: %v\n", *coil, on)
	default:
		raw, err := client.ReadInputRegister(uint16(*inputreg))
		if err != nil {
			log.Fatal("read input register: ", err)
		}
		fmt.Printf("input register %d: raw %d (%.2f)\n", *inputreg, raw, float64(raw)/100)
	}
}

func isFlagPassed(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
