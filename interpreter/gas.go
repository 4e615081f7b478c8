// Copyright 2014 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package interpreter

import (
	"github.com/ethereum/go-ethereum/params"

	"github.com/evmgo/evmcore/evmc"
)

// Gas cost tiers, named the way the Yellow Paper and go-ethereum's own
// params.Gxxx constants name them, taken directly from the relevant EIPs.
const (
	GasZero                   = 0
	GasBase                   = 2
	GasVeryLow                = 3
	GasLow                    = 5
	GasMid                    = 8
	GasHigh                   = 10
	GasJumpdest               = 1
	GasMemory                 = 3 // per word, charged via u256.MemoryGasCost instead of linearly here
	GasCopy                   = 3 // per word
	GasExpByte                = 50
	GasExpByteEIP150          = 10
	GasLog                    = 375
	GasLogTopic               = 375
	GasLogByte                = 8
	GasSha3                   = 30
	GasSha3Word               = 6
	GasCreate                 = 32000
	GasCreateWord             = 2 // EIP-3860 initcode word cost
	GasCodeDeposit            = 200
	GasCallStipend            = 2300
	GasCallValue              = 9000
	GasNewAccount             = 25000
	GasSelfdestructPreEIP150  = 0
	GasSelfdestructEIP150     = 5000
	GasSelfdestructNewAccount = 25000

	// EIP-2929 access-list costs.
	GasColdAccountAccess = 2600
	GasWarmStorageRead   = 100
	GasColdSload         = 2100
	GasSloadPreBerlin    = 800

	// EIP-1884.
	GasExtcodeHash = 700
	GasSelfBalance = 5

	// EIP-1153 transient storage.
	GasTload  = 100
	GasTstore = 100

	// CallGasCapDivisor is the EIP-150 63/64 retention divisor: a nested
	// call may receive at most gas_left - gas_left/CallGasCapDivisor.
	CallGasCapDivisor = 64

	// MaxCallDepth is the hard nested-call depth limit.
	MaxCallDepth = 1024

	// MaxInitCodeSize is the EIP-3860 limit on CREATE/CREATE2 init code.
	MaxInitCodeSize = params.MaxInitCodeSize
	// MaxCodeSize is the EIP-170 limit on deployed contract code.
	MaxCodeSize = params.MaxCodeSize

	SstoreRefundEIP2200         = 4800
	SstoreClearRefundPreEIP3529 = 15000
	SstoreClearRefundEIP3529    = 4800
	SstoreSetGasEIP2200         = 20000
	SstoreResetGasEIP2200       = 5000
	SstoreSentryGasEIP2200      = 2300
)

// expByteCost returns the per-exponent-byte EXP surcharge for the given
// revision (EIP-160/Spurious Dragon raised it from 10 to 50).
func expByteCost(rev evmc.Revision) uint64 {
	if rev.AtLeast(evmc.SpuriousDragon) {
		return GasExpByte
	}
	return GasExpByteEIP150
}

// accountAccessCost returns the account-access surcharge: the EIP-2929
// cold/warm price from Berlin on, and before Berlin a flat fee that ignores
// warm (700 from Tangerine Whistle/EIP-150 on, 20 before it).
func accountAccessCost(rev evmc.Revision, warm bool) uint64 {
	if !rev.AtLeast(evmc.Berlin) {
		if rev.AtLeast(evmc.TangerineWhistle) {
			return 700
		}
		return 20
	}
	if warm {
		return GasWarmStorageRead
	}
	return GasColdAccountAccess
}

// balanceCost follows BALANCE's own repricing history (EIP-150, EIP-1884,
// EIP-2929), which differs from the other account-access opcodes' pre-Berlin
// fees.
func balanceCost(rev evmc.Revision, warm bool) uint64 {
	switch {
	case rev.AtLeast(evmc.Berlin):
		if warm {
			return GasWarmStorageRead
		}
		return GasColdAccountAccess
	case rev.AtLeast(evmc.Istanbul):
		return 700
	case rev.AtLeast(evmc.TangerineWhistle):
		return 400
	default:
		return 20
	}
}

func sloadCost(rev evmc.Revision, warm bool) uint64 {
	if rev.AtLeast(evmc.Berlin) {
		if warm {
			return GasWarmStorageRead
		}
		return GasColdSload
	}
	if rev.AtLeast(evmc.Istanbul) {
		return GasSloadPreBerlin
	}
	return 200
}

func selfBalanceCost(rev evmc.Revision) uint64 {
	if rev.AtLeast(evmc.Istanbul) {
		return GasSelfBalance
	}
	return GasLow
}

func extcodeHashCost(rev evmc.Revision, warm bool) uint64 {
	if rev.AtLeast(evmc.Berlin) {
		if warm {
			return GasWarmStorageRead
		}
		return GasColdAccountAccess
	}
	return GasExtcodeHash
}

// MaxRefundQuotient caps the refund a transaction may claim relative to its
// gas used: gas_used/5 from London (EIP-3529) on, gas_used/2 before. The cap
// itself is applied by the host at transaction end; this is exported so
// embedding clients share one source for the divisor.
func MaxRefundQuotient(rev evmc.Revision) int64 {
	if rev.AtLeast(evmc.London) {
		return int64(params.RefundQuotientEIP3529)
	}
	return int64(params.RefundQuotient)
}

// callGasCap implements the EIP-150 63/64 rule: a nested call may forward at
// most gasLeft - gasLeft/64, capped further by the gas the caller explicitly
// requested.
func callGasCap(gasLeft int64, requested uint64) int64 {
	allowed := gasLeft - gasLeft/CallGasCapDivisor
	if allowed < 0 {
		allowed = 0
	}
	if requested <= uint64(allowed) {
		return int64(requested)
	}
	return allowed
}
